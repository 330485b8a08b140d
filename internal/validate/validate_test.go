package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/zen/internal/models"
)

func TestNewSession(t *testing.T) {
	assert.NoError(t, NewSession("Evening Relaxation", 20, "2025-01-10", "21:00"))

	err := NewSession("  ", 0, "10/01/2025", "9pm")
	require.Error(t, err)

	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 4)
	assert.Equal(t, "Title is required", errs.Field("title"))
	assert.Contains(t, errs.Field("duration"), "between 1 and 180")
	assert.NotEmpty(t, errs.Field("date"))
	assert.NotEmpty(t, errs.Field("time"))
}

func TestDurationBounds(t *testing.T) {
	assert.NoError(t, Duration(1))
	assert.NoError(t, Duration(180))
	assert.Error(t, Duration(0))
	assert.Error(t, Duration(181))
}

func TestSessionPatch_OnlyPresentFields(t *testing.T) {
	// Absent fields are not validated
	assert.NoError(t, SessionPatch(models.SessionPatch{Notes: models.Ptr("")}))
	assert.NoError(t, SessionPatch(models.ElapsedPatch(0)))

	assert.Error(t, SessionPatch(models.SessionPatch{Title: models.Ptr("")}))
	assert.Error(t, SessionPatch(models.SessionPatch{Duration: models.Ptr(500)}))
	assert.Error(t, SessionPatch(models.StatusPatch("archived")))
	assert.Error(t, SessionPatch(models.ElapsedPatch(-1)))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("user@example.com"))
	assert.NoError(t, Email("First.Last+tag@Sub.Example.ORG"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("user@example"))
	assert.Error(t, Email("not an email"))
}

func TestRegistration(t *testing.T) {
	assert.NoError(t, Registration("Ada", "ada@example.com", "secret1", "secret1"))

	err := Registration("Ada", "ada@example.com", "abc", "abd")
	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "Password must be at least 6 characters", errs.Field("password"))
	assert.Equal(t, "Passwords do not match", errs.Field("confirm"))
}

func TestLogin(t *testing.T) {
	assert.NoError(t, Login("ada@example.com", "secret1"))
	assert.Error(t, Login("ada@example.com", "short"))
}
