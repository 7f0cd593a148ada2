package httpapi

import (
	"net/http"
	"time"

	"github.com/eventala/eventala/internal/core/model"
)

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
}

type registrationRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	resp, err := s.events.CreateEvent(r.Context(), model.CreateEventArgs{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"event_id": resp.Event.EventID})
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.events.GetEvent(r.Context(), r.PathValue("eventId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, event)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.ListEvents(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, events)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	resp, err := s.events.UpdateEvent(r.Context(), model.UpdateEventArgs{
		EventID:     r.PathValue("eventId"),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"event_id": resp.Event.EventID})
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.events.DeleteEvent(r.Context(), r.PathValue("eventId")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"msg": "event deleted"})
}

func (s *Server) addRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	resp, err := s.events.Register(r.Context(), model.RegistrationArgs{
		EventID: r.PathValue("eventId"),
		UserID:  req.UserID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"msg": "registration added", "event_id": resp.Event.EventID, "event": resp.Event})
}

func (s *Server) removeRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	resp, err := s.events.Unregister(r.Context(), model.RegistrationArgs{
		EventID: r.PathValue("eventId"),
		UserID:  req.UserID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"msg": "registration deleted", "event_id": resp.Event.EventID, "event": resp.Event})
}
