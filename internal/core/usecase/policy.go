package usecase

import (
	"github.com/eventala/eventala/internal/core/model"
)

// Authorize decides whether a claim set permits an operation requiring any
// of the given roles. It returns model.ErrAccessDenied when the claims are
// absent, carry no role, or share no role with requiredAny.
func Authorize(claims *model.ClaimSet, requiredAny ...model.Role) error {
	if claims == nil || len(claims.Roles) == 0 {
		return model.ErrAccessDenied
	}
	if !claims.HasAny(requiredAny...) {
		return model.ErrAccessDenied
	}
	return nil
}
