package usecase

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eventala/eventala/internal/core/model"
)

// roleClaim is the claim carrying the role, as issued by the identity side.
// Its value is a single string or a list of strings depending on the issuer
// version; the verifier normalizes both forms.
const roleClaim = "custom:role"

// VerifierArgs contains the mandatory arguments for the Verifier.
type VerifierArgs struct {
	// SigningKey is the HMAC key tokens must be signed with.
	SigningKey []byte
}

// NewVerifier creates a new Verifier.
func NewVerifier(args VerifierArgs) *Verifier {
	return &Verifier{signingKey: args.SigningKey}
}

// Verifier decodes bearer credentials into claim sets. Verification fails
// closed: a token that cannot be parsed, carries a non-HMAC algorithm, a bad
// signature or expired time claims is rejected as malformed.
type Verifier struct {
	signingKey []byte
}

// Verify decodes the value of an authorization header into a ClaimSet. A
// single "Bearer " prefix is stripped when present; its absence is accepted
// and the value is used as-is.
func (v *Verifier) Verify(rawHeaderValue string) (*model.ClaimSet, error) {
	tokenString := strings.TrimPrefix(rawHeaderValue, "Bearer ")

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedToken, err)
	}

	claimSet := &model.ClaimSet{Roles: normalizeRoles(claims[roleClaim])}
	if sub, err := claims.GetSubject(); err == nil {
		claimSet.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		claimSet.Email = email
	}
	return claimSet, nil
}

// normalizeRoles resolves the scalar-or-list ambiguity of the role claim
// once, at the boundary.
func normalizeRoles(claim any) []model.Role {
	switch value := claim.(type) {
	case string:
		if value == "" {
			return nil
		}
		return []model.Role{model.Role(value)}
	case []any:
		var roles []model.Role
		for _, item := range value {
			if s, ok := item.(string); ok && s != "" {
				roles = append(roles, model.Role(s))
			}
		}
		return roles
	default:
		return nil
	}
}
