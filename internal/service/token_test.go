package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ekuznetsov/campus-market-backend/internal/models"
)

func TestTokenManager_Roundtrip(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	user := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	pair, err := m.GeneratePair(user)
	assert.NoError(t, err)

	userID, role, err := m.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleAdmin, role)

	claims, err := m.ParseRefresh(pair.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestTokenManager_RejectsForeignToken(t *testing.T) {
	issuer := NewTokenManager("secret-one", "refresh-one", 15*time.Minute, time.Hour)
	verifier := NewTokenManager("secret-two", "refresh-two", 15*time.Minute, time.Hour)

	pair, err := issuer.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleUser})
	assert.NoError(t, err)

	_, _, err = verifier.ParseAccess(pair.AccessToken)
	assert.Error(t, err)

	_, err = verifier.ParseRefresh(pair.RefreshToken)
	assert.Error(t, err)
}

func TestTokenManager_ExpiredAccessRejected(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret", -time.Minute, time.Hour)

	pair, err := m.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleUser})
	assert.NoError(t, err)

	_, _, err = m.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}
