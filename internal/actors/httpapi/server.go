package httpapi

import (
	"context"
	"net/http"

	"github.com/eventala/eventala/internal/core/model"
	"github.com/eventala/eventala/internal/core/usecase"
)

// credentialVerifier decodes bearer header values into claim sets.
type credentialVerifier interface {
	Verify(rawHeaderValue string) (*model.ClaimSet, error)
}

type authUsecase interface {
	Login(ctx context.Context, args model.LoginArgs) (*model.LoginResponse, error)
}

type profileUsecase interface {
	CreateProfile(ctx context.Context, args model.CreateProfileArgs) (*model.CreateProfileResponse, error)
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	UpdateProfile(ctx context.Context, args model.UpdateProfileArgs) (*model.UpdateProfileResponse, error)
	DeleteProfile(ctx context.Context, args model.DeleteProfileArgs) error
}

type eventUsecase interface {
	CreateEvent(ctx context.Context, args model.CreateEventArgs) (*model.CreateEventResponse, error)
	GetEvent(ctx context.Context, eventID string) (*model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	UpdateEvent(ctx context.Context, args model.UpdateEventArgs) (*model.UpdateEventResponse, error)
	DeleteEvent(ctx context.Context, eventID string) error
	Register(ctx context.Context, args model.RegistrationArgs) (*model.RegistrationResponse, error)
	Unregister(ctx context.Context, args model.RegistrationArgs) (*model.RegistrationResponse, error)
}

type stockUsecase interface {
	CreateStock(ctx context.Context, args model.CreateStockArgs) (*model.CreateStockResponse, error)
	GetStock(ctx context.Context, stockID string) (*model.Stock, error)
	ListStocks(ctx context.Context) ([]model.Stock, error)
	UpdateStock(ctx context.Context, args model.UpdateStockArgs) (*model.UpdateStockResponse, error)
	DeleteStock(ctx context.Context, stockID string) error
}

// ServerArgs are the mandatory args to instantiate the API server.
type ServerArgs struct {
	// Verifier decodes bearer credentials.
	Verifier credentialVerifier

	// Auth is the login usecase.
	Auth authUsecase

	// Profiles is the profile usecase.
	Profiles profileUsecase

	// Events is the event usecase.
	Events eventUsecase

	// Stocks is the stock usecase.
	Stocks stockUsecase
}

// NewServer creates the API server.
func NewServer(args ServerArgs) *Server {
	return &Server{
		verifier: args.Verifier,
		auth:     args.Auth,
		profiles: args.Profiles,
		events:   args.Events,
		stocks:   args.Stocks,
	}
}

// Server implements the HTTP handlers of the API. Handlers stay thin: decode
// the request, gate where gated, invoke the usecase, map the outcome to a
// status and a JSON body.
type Server struct {
	verifier credentialVerifier
	auth     authUsecase
	profiles profileUsecase
	events   eventUsecase
	stocks   stockUsecase
}

// Router builds the route table. Reads and the registration edits are
// deliberately ungated; every other write requires an organizer or admin
// role claim.
func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("POST /login", s.login)

	mux.HandleFunc("POST /users", s.gated(s.createUser))
	mux.HandleFunc("GET /users/{userId}", s.getUser)
	mux.HandleFunc("GET /users", s.listUsers)
	mux.HandleFunc("PUT /users/{userId}", s.gated(s.updateUser))
	mux.HandleFunc("DELETE /users/{userId}", s.gated(s.deleteUser))

	mux.HandleFunc("POST /events", s.gated(s.createEvent))
	mux.HandleFunc("GET /events/{eventId}", s.getEvent)
	mux.HandleFunc("GET /events", s.listEvents)
	mux.HandleFunc("PUT /events/{eventId}", s.gated(s.updateEvent))
	mux.HandleFunc("DELETE /events/{eventId}", s.gated(s.deleteEvent))

	mux.HandleFunc("POST /events/{eventId}/registrations", s.addRegistration)
	mux.HandleFunc("DELETE /events/{eventId}/registrations", s.removeRegistration)

	mux.HandleFunc("POST /stocks", s.gated(s.createStock))
	mux.HandleFunc("GET /stocks/{stockId}", s.getStock)
	mux.HandleFunc("GET /stocks", s.listStocks)
	mux.HandleFunc("PUT /stocks/{stockId}", s.gated(s.updateStock))
	mux.HandleFunc("DELETE /stocks/{stockId}", s.gated(s.deleteStock))

	return mux
}

// gated wraps a handler with the organizer/admin role check.
func (s *Server) gated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// absent credentials are a policy denial, not a verification error
		var claims *model.ClaimSet
		if raw := r.Header.Get("Authorization"); raw != "" {
			var err error
			claims, err = s.verifier.Verify(raw)
			if err != nil {
				respondError(w, err)
				return
			}
		}
		if err := usecase.Authorize(claims, model.RoleOrganizer, model.RoleAdmin); err != nil {
			respondError(w, err)
			return
		}
		next(w, r)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "SERVING"})
}
