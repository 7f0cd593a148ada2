package httpapi

import (
	"net/http"

	"github.com/eventala/eventala/internal/core/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	resp, err := s.auth.Login(r.Context(), model.LoginArgs{
		Email:    req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"token": resp.Token})
}
