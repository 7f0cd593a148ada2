package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventala/eventala/internal/core/model"
)

func TestUserPayload(t *testing.T) {
	t.Run("an absent role stays empty", func(t *testing.T) {
		_, role, _, attributes := userPayload(map[string]any{
			"email":    "a@x.com",
			"nickname": "al",
		})
		assert.Equal(t, model.Role(""), role, "no role key must not read as a role change")
		assert.Equal(t, map[string]any{"nickname": "al"}, attributes)
	})

	t.Run("an explicit role is normalized", func(t *testing.T) {
		_, role, _, _ := userPayload(map[string]any{"role": "orga"})
		assert.Equal(t, model.RoleOrganizer, role)

		_, role, _, _ = userPayload(map[string]any{"role": "superuser"})
		assert.Equal(t, model.RoleUser, role)
	})

	t.Run("known keys never travel as attributes", func(t *testing.T) {
		email, role, password, attributes := userPayload(map[string]any{
			"email":    "a@x.com",
			"role":     "admin",
			"password": "s3cret",
			"country":  "DE",
		})
		assert.Equal(t, "a@x.com", email)
		assert.Equal(t, model.RoleAdmin, role)
		assert.Equal(t, "s3cret", password)
		assert.Equal(t, map[string]any{"country": "DE"}, attributes)
	})
}
