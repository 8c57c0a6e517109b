package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/moodlog/pkg/validator"
)

func TestRequired(t *testing.T) {
	assert.True(t, validator.Required("email", "a@b.co").Check())
	assert.False(t, validator.Required("email", "").Check())
	assert.False(t, validator.Required("email", "   ").Check())
	assert.Equal(t, "field is required", validator.Required("email", "").Error.Message)
}

func TestLength(t *testing.T) {
	assert.True(t, validator.MinLen("password", "secret", 6).Check())
	assert.False(t, validator.MinLen("password", "short", 6).Check())
	assert.True(t, validator.MaxLen("name", "bob", 3).Check())
	assert.False(t, validator.MaxLen("name", "bobby", 3).Check())
	assert.Equal(t, "must be at most 3 characters long", validator.MaxLen("name", "bobby", 3).Error.Message)
}

func TestValidEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b+tag@sub.example.org"}
	invalid := []string{"", "alice", "alice@", "@example.com", "alice@localhost", "alice@.example.com", "Alice <alice@example.com>"}

	for _, v := range valid {
		assert.True(t, validator.ValidEmail("email", v).Check(), v)
	}
	for _, v := range invalid {
		assert.False(t, validator.ValidEmail("email", v).Check(), v)
	}
}

func TestApply(t *testing.T) {
	t.Run("passes", func(t *testing.T) {
		assert.NoError(t, validator.Apply(
			validator.Required("email", "alice@example.com"),
			validator.ValidEmail("email", "alice@example.com"),
		))
	})

	t.Run("collects every failure", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("email", ""),
			validator.ValidEmail("email", ""),
			validator.Required("password", ""),
			validator.MaxLen("name", "abc", 10),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 3)
		assert.Equal(t, []string{"email", "password"}, errs.Fields())
		assert.True(t, errs.Has("password"))
		assert.False(t, errs.Has("name"))
		assert.Equal(t, []string{"field is required", "must be a valid email address"}, errs.Get("email"))
		assert.Equal(t, "validation failed: email: field is required; email: must be a valid email address; password: field is required", err.Error())
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("login: %w", validator.Apply(validator.Required("email", "")))
		assert.True(t, validator.ExtractValidationErrors(err).Has("email"))
		assert.Nil(t, validator.ExtractValidationErrors(errors.New("other")))
	})
}
