package moderation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekuznetsov/campus-market-backend/internal/models"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	scanner, err := NewScanner(DefaultVocabulary())
	require.NoError(t, err)
	return NewGate(scanner)
}

func TestGate_CleanContentAllowed(t *testing.T) {
	gate := newTestGate(t)
	user := &models.User{ID: uuid.New(), Role: models.RoleUser}

	decision := gate.Evaluate(user, "Mini fridge", "Perfect for dorm rooms, lightly used")

	assert.True(t, decision.Allowed)
	assert.False(t, decision.ViolationDetected)
	assert.Empty(t, decision.Reason)
}

func TestGate_UserViolationDenied(t *testing.T) {
	gate := newTestGate(t)
	user := &models.User{ID: uuid.New(), Role: models.RoleUser}

	decision := gate.Evaluate(user, "Selling weed", "hmu")

	assert.False(t, decision.Allowed)
	assert.True(t, decision.ViolationDetected)
	assert.Contains(t, decision.Reason, "Content policy violation")
}

func TestGate_AdminViolationAllowedButFlagged(t *testing.T) {
	gate := newTestGate(t)
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	decision := gate.Evaluate(admin, "Selling weed", "hmu")

	assert.True(t, decision.Allowed)
	assert.True(t, decision.ViolationDetected)
	assert.NotEmpty(t, decision.Reason)
}
