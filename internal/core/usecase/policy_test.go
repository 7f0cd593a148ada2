package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventala/eventala/internal/core/model"
)

func TestAuthorize(t *testing.T) {
	requiredAny := []model.Role{model.RoleOrganizer, model.RoleAdmin}

	tests := []struct {
		name    string
		claims  *model.ClaimSet
		allowed bool
	}{
		{
			name:    "nil claims are denied",
			claims:  nil,
			allowed: false,
		},
		{
			name:    "claims without role are denied",
			claims:  &model.ClaimSet{Subject: "u1"},
			allowed: false,
		},
		{
			name:    "user role is denied",
			claims:  &model.ClaimSet{Roles: []model.Role{model.RoleUser}},
			allowed: false,
		},
		{
			name:    "organizer role is allowed",
			claims:  &model.ClaimSet{Roles: []model.Role{model.RoleOrganizer}},
			allowed: true,
		},
		{
			name:    "admin role is allowed",
			claims:  &model.ClaimSet{Roles: []model.Role{model.RoleAdmin}},
			allowed: true,
		},
		{
			name:    "role list with one intersecting role is allowed",
			claims:  &model.ClaimSet{Roles: []model.Role{model.RoleUser, model.RoleAdmin}},
			allowed: true,
		},
		{
			name:    "role list disjoint from required is denied",
			claims:  &model.ClaimSet{Roles: []model.Role{model.RoleUser, "guest"}},
			allowed: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Authorize(test.claims, requiredAny...)
			if test.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrAccessDenied)
			}
		})
	}
}
