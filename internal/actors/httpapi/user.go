package httpapi

import (
	"net/http"

	"github.com/eventala/eventala/internal/core/model"
)

// userPayload pulls the known keys out of the free-form request body; every
// remaining key travels as a profile attribute.
func userPayload(body map[string]any) (email string, role model.Role, password string, attributes map[string]any) {
	attributes = make(map[string]any, len(body))
	for k, v := range body {
		switch k {
		case "email":
			email, _ = v.(string)
		case "role":
			// an absent or empty role means "keep the stored role" on
			// updates; only an explicit value is forwarded
			if s, ok := v.(string); ok && s != "" {
				role, _ = model.ParseRole(s)
			}
		case "password":
			password, _ = v.(string)
		default:
			attributes[k] = v
		}
	}
	return email, role, password, attributes
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if err := decodeBody(r, &body); err != nil {
		respondBadRequest(w)
		return
	}
	email, role, password, attributes := userPayload(body)

	resp, err := s.profiles.CreateProfile(r.Context(), model.CreateProfileArgs{
		Email:             email,
		Role:              role,
		TemporaryPassword: password,
		Attributes:        attributes,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"user_id": resp.Profile.UserID})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.GetProfile(r.Context(), r.PathValue("userId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, profile)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.ListProfiles(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, profiles)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if err := decodeBody(r, &body); err != nil {
		respondBadRequest(w)
		return
	}
	email, role, _, attributes := userPayload(body)

	resp, err := s.profiles.UpdateProfile(r.Context(), model.UpdateProfileArgs{
		UserID:     r.PathValue("userId"),
		Email:      email,
		Role:       role,
		Attributes: attributes,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"user_id": resp.Profile.UserID})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := s.profiles.DeleteProfile(r.Context(), model.DeleteProfileArgs{UserID: r.PathValue("userId")})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"msg": "user deleted"})
}
