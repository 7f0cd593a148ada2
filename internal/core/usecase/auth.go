package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"

	"github.com/eventala/eventala/internal/core/model"
	"github.com/eventala/eventala/internal/core/ports"
)

// AuthServiceArgs contains the mandatory arguments for the AuthService.
type AuthServiceArgs struct {
	// Identities is the partitioned credential store.
	Identities ports.IdentityStore

	// SigningKey is the HMAC key used to sign issued tokens.
	SigningKey []byte

	// TokenTTL is the validity duration of issued tokens.
	TokenTTL time.Duration
}

// AuthServiceOptArgs are the optional arguments for building an AuthService.
type AuthServiceOptArgs = func(*AuthService)

// WithAuthNowFunc can be used to override the nowFunc. Useful for testing.
func WithAuthNowFunc(nowFunc func() time.Time) AuthServiceOptArgs {
	return func(a *AuthService) {
		a.nowFunc = nowFunc
	}
}

// NewAuthService creates a new AuthService.
func NewAuthService(args AuthServiceArgs, optArgs ...AuthServiceOptArgs) *AuthService {
	a := &AuthService{
		identities: args.Identities,
		signingKey: args.SigningKey,
		tokenTTL:   args.TokenTTL,
		nowFunc:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range optArgs {
		opt(a)
	}
	return a
}

// AuthService authenticates credentials against the identity partitions and
// issues bearer tokens carrying the partition's role claim.
type AuthService struct {
	identities ports.IdentityStore
	signingKey []byte
	tokenTTL   time.Duration
	nowFunc    func() time.Time
}

// Login verifies the email and password against whichever partition holds
// the identity and returns a signed token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (a *AuthService) Login(ctx context.Context, args model.LoginArgs) (*model.LoginResponse, error) {
	identity, err := a.identities.FindByEmail(ctx, args.Email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(args.Password, identity.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error comparing password hash: %w", err)
	}
	if !match {
		return nil, model.ErrInvalidCredentials
	}

	now := a.nowFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     identity.Subject,
		"email":   identity.Email,
		roleClaim: string(model.RoleFor(identity.Partition)),
		"iat":     now.Unix(),
		"exp":     now.Add(a.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}
	return &model.LoginResponse{Token: signed}, nil
}
