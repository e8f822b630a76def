package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ekuznetsov/campus-market-backend/internal/models"
	"github.com/ekuznetsov/campus-market-backend/internal/pkg/apperror"
	"github.com/ekuznetsov/campus-market-backend/internal/repository"
)

type mockActionRepo struct {
	mock.Mock
}

func (m *mockActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminAction), args.Error(1)
}

func (m *mockActionRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, action *models.AdminAction) error {
	args := m.Called(ctx, tx, action)
	if args.Error(0) == nil {
		action.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockActionRepo) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *mockActionRepo) HasActiveBan(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockActionRepo) HasActiveBanTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockActionRepo) CountStrikesTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockActionRepo) LatestStrikeTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*models.AdminAction, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminAction), args.Error(1)
}

func (m *mockActionRepo) ListByTargetUser(ctx context.Context, userID uuid.UUID) ([]models.AdminAction, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.AdminAction), args.Error(1)
}

func (m *mockActionRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.AdminAction, error) {
	args := m.Called(ctx, adminID)
	return args.Get(0).([]models.AdminAction), args.Error(1)
}

func (m *mockActionRepo) ListByTargetListing(ctx context.Context, listingID uuid.UUID) ([]models.AdminAction, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]models.AdminAction), args.Error(1)
}

func (m *mockActionRepo) ListByType(ctx context.Context, actionType string) ([]models.AdminAction, error) {
	args := m.Called(ctx, actionType)
	return args.Get(0).([]models.AdminAction), args.Error(1)
}

func (m *mockActionRepo) Search(ctx context.Context, filter models.AdminActionFilter, limit, offset int) ([]models.AdminAction, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]models.AdminAction), args.Int(1), args.Error(2)
}

type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockListingStore struct {
	mock.Mock
}

func (m *mockListingStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *mockListingStore) HardDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// fakeTxManager выполняет функцию без реальной транзакции: моки репозиториев
// игнорируют аргумент tx.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTransaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return fn(nil)
}

func adminUser(id uuid.UUID) *models.User {
	return &models.User{ID: id, Role: models.RoleAdmin, IsActive: true}
}

func regularUser(id uuid.UUID) *models.User {
	return &models.User{ID: id, Role: models.RoleUser, IsActive: true}
}

func newModerationFixture() (*mockActionRepo, *mockUserDirectory, *mockListingStore, *ModerationService) {
	actions := new(mockActionRepo)
	users := new(mockUserDirectory)
	listings := new(mockListingStore)
	svc := NewModerationService(actions, users, listings, &fakeTxManager{}, nil, 3)
	return actions, users, listings, svc
}

func TestModerationService_CreateStrike_Success(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, targetID).Return(regularUser(targetID), nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, targetID).Return(false, nil)
	actions.On("InsertTx", ctx, mock.Anything, mock.AnythingOfType("*models.AdminAction")).Return(nil)
	actions.On("CountStrikesTx", ctx, mock.Anything, targetID).Return(1, nil)

	outcome, err := svc.CreateStrike(ctx, adminID, targetID, "spam listings")

	assert.NoError(t, err)
	assert.Equal(t, 1, outcome.StrikeCount)
	assert.False(t, outcome.AutoBanTriggered)
	assert.Nil(t, outcome.AutoBan)
	assert.Equal(t, models.ActionTypeStrike, outcome.Strike.ActionType)
	assert.Equal(t, models.ActionOriginManual, outcome.Strike.Origin)
	assert.Equal(t, adminID, *outcome.Strike.AdminID)
	actions.AssertNumberOfCalls(t, "InsertTx", 1)
}

func TestModerationService_CreateStrike_AutoBanAtThreshold(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, targetID).Return(regularUser(targetID), nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, targetID).Return(false, nil)
	actions.On("InsertTx", ctx, mock.Anything, mock.AnythingOfType("*models.AdminAction")).Return(nil)
	actions.On("CountStrikesTx", ctx, mock.Anything, targetID).Return(3, nil)

	outcome, err := svc.CreateStrike(ctx, adminID, targetID, "third offense")

	assert.NoError(t, err)
	assert.Equal(t, 3, outcome.StrikeCount)
	assert.True(t, outcome.AutoBanTriggered)
	assert.NotNil(t, outcome.AutoBan)
	assert.Equal(t, models.ActionTypeBan, outcome.AutoBan.ActionType)
	assert.Equal(t, models.ActionOriginAutoEscalation, outcome.AutoBan.Origin)
	assert.Nil(t, outcome.AutoBan.ExpiresAt)
	assert.Contains(t, *outcome.AutoBan.Reason, "Automatic permanent ban: 3 strikes accumulated")
	assert.Contains(t, *outcome.AutoBan.Reason, "third offense")
	// Страйк и бан: две вставки в одной транзакции
	actions.AssertNumberOfCalls(t, "InsertTx", 2)
}

func TestModerationService_CreateStrike_AutoBanReasonCappedAtColumnLimit(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()
	longReason := strings.Repeat("x", models.MaxActionReasonLength)

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, targetID).Return(regularUser(targetID), nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, targetID).Return(false, nil)
	actions.On("InsertTx", ctx, mock.Anything, mock.AnythingOfType("*models.AdminAction")).Return(nil)
	actions.On("CountStrikesTx", ctx, mock.Anything, targetID).Return(3, nil)

	outcome, err := svc.CreateStrike(ctx, adminID, targetID, longReason)

	assert.NoError(t, err)
	assert.True(t, outcome.AutoBanTriggered)
	assert.Equal(t, longReason, *outcome.Strike.Reason)
	// Причина авто-бана составная: префикс не должен вывести её за предел колонки
	assert.Len(t, []rune(*outcome.AutoBan.Reason), models.MaxActionReasonLength)
	assert.Contains(t, *outcome.AutoBan.Reason, "Automatic permanent ban: 3 strikes accumulated")
	actions.AssertNumberOfCalls(t, "InsertTx", 2)
}

func TestModerationService_CreateStrike_BannedTarget_Conflict(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, targetID).Return(regularUser(targetID), nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, targetID).Return(true, nil)

	_, err := svc.CreateStrike(ctx, adminID, targetID, "spam")

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	actions.AssertNotCalled(t, "InsertTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationService_CreateStrike_NonAdminCaller_Forbidden(t *testing.T) {
	_, users, _, svc := newModerationFixture()
	ctx := context.Background()

	callerID := uuid.New()
	users.On("GetByID", ctx, callerID).Return(regularUser(callerID), nil)

	_, err := svc.CreateStrike(ctx, callerID, uuid.New(), "spam")

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestModerationService_CreateStrike_AdminTarget_Forbidden(t *testing.T) {
	_, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, targetID).Return(adminUser(targetID), nil)

	_, err := svc.CreateStrike(ctx, adminID, targetID, "spam")

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestModerationService_CreateStrike_UnknownTarget_NotFound(t *testing.T) {
	_, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, targetID).Return(nil, repository.ErrUserNotFound)

	_, err := svc.CreateStrike(ctx, adminID, targetID, "spam")

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestModerationService_CreateStrike_ReasonTooLong(t *testing.T) {
	_, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, targetID).Return(regularUser(targetID), nil)

	long := make([]byte, models.MaxActionReasonLength+1)
	for i := range long {
		long[i] = 'x'
	}

	_, err := svc.CreateStrike(ctx, adminID, targetID, string(long))

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestModerationService_RecordViolationStrike_SystemOrigin(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	targetID := uuid.New()

	users.On("GetByID", ctx, targetID).Return(regularUser(targetID), nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, targetID).Return(false, nil)
	actions.On("InsertTx", ctx, mock.Anything, mock.AnythingOfType("*models.AdminAction")).Return(nil)
	actions.On("CountStrikesTx", ctx, mock.Anything, targetID).Return(1, nil)

	outcome, err := svc.RecordViolationStrike(ctx, targetID, "Content policy violation: Detected prohibited content - weed")

	assert.NoError(t, err)
	assert.Nil(t, outcome.Strike.AdminID)
	assert.Equal(t, models.ActionOriginAutoEscalation, outcome.Strike.Origin)
}

func TestModerationService_CreateBan_Success(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, targetID).Return(regularUser(targetID), nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, targetID).Return(false, nil)
	actions.On("InsertTx", ctx, mock.Anything, mock.AnythingOfType("*models.AdminAction")).Return(nil)

	ban, err := svc.CreateBan(ctx, adminID, targetID, "harassment")

	assert.NoError(t, err)
	assert.Equal(t, models.ActionTypeBan, ban.ActionType)
	assert.Equal(t, models.ActionOriginManual, ban.Origin)
	assert.Nil(t, ban.ExpiresAt)
}

func TestModerationService_CreateBan_AlreadyBanned_Conflict(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, targetID).Return(regularUser(targetID), nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, targetID).Return(true, nil)

	_, err := svc.CreateBan(ctx, adminID, targetID, "harassment")

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	actions.AssertNotCalled(t, "InsertTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationService_RemoveListing_OwnerGetsStrike(t *testing.T) {
	actions, users, listings, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	ownerID := uuid.New()
	listingID := uuid.New()

	listing := &models.Listing{ID: listingID, SellerID: ownerID, Title: "flagged"}

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, ownerID).Return(regularUser(ownerID), nil)
	listings.On("GetByID", ctx, listingID).Return(listing, nil)
	listings.On("HardDeleteTx", ctx, mock.Anything, listingID).Return(nil)
	actions.On("InsertTx", ctx, mock.Anything, mock.AnythingOfType("*models.AdminAction")).Return(nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, ownerID).Return(false, nil)
	actions.On("CountStrikesTx", ctx, mock.Anything, ownerID).Return(1, nil)

	removal, err := svc.RemoveListingWithStrike(ctx, adminID, listingID, "prohibited item")

	assert.NoError(t, err)
	assert.Equal(t, models.ActionTypeListingRemoval, removal.ActionType)
	assert.Equal(t, listingID, *removal.TargetListingID)
	assert.Equal(t, ownerID, *removal.TargetUserID)
	// Запись об удалении и страйк владельцу
	actions.AssertNumberOfCalls(t, "InsertTx", 2)
	listings.AssertCalled(t, "HardDeleteTx", ctx, mock.Anything, listingID)
}

func TestModerationService_RemoveListing_LongReasonCappedAtColumnLimit(t *testing.T) {
	actions, users, listings, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	ownerID := uuid.New()
	listingID := uuid.New()
	longReason := strings.Repeat("y", models.MaxActionReasonLength)

	listing := &models.Listing{ID: listingID, SellerID: ownerID}

	var inserted []models.AdminAction
	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, ownerID).Return(regularUser(ownerID), nil)
	listings.On("GetByID", ctx, listingID).Return(listing, nil)
	listings.On("HardDeleteTx", ctx, mock.Anything, listingID).Return(nil)
	actions.On("InsertTx", ctx, mock.Anything, mock.AnythingOfType("*models.AdminAction")).
		Run(func(args mock.Arguments) {
			inserted = append(inserted, *args.Get(2).(*models.AdminAction))
		}).Return(nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, ownerID).Return(false, nil)
	actions.On("CountStrikesTx", ctx, mock.Anything, ownerID).Return(3, nil)

	removal, err := svc.RemoveListingWithStrike(ctx, adminID, listingID, longReason)

	assert.NoError(t, err)
	assert.Equal(t, longReason, *removal.Reason)
	// Запись об удалении, страйк и авто-бан по порогу
	assert.Len(t, inserted, 3)
	assert.Contains(t, *inserted[1].Reason, "Listing removed: ")
	assert.Contains(t, *inserted[2].Reason, "Automatic permanent ban: 3 strikes accumulated")
	for _, action := range inserted[1:] {
		assert.LessOrEqual(t, len([]rune(*action.Reason)), models.MaxActionReasonLength)
	}
}

func TestModerationService_RemoveListing_BannedOwner_NoStrike(t *testing.T) {
	actions, users, listings, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	ownerID := uuid.New()
	listingID := uuid.New()

	listing := &models.Listing{ID: listingID, SellerID: ownerID}

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, ownerID).Return(regularUser(ownerID), nil)
	listings.On("GetByID", ctx, listingID).Return(listing, nil)
	listings.On("HardDeleteTx", ctx, mock.Anything, listingID).Return(nil)
	actions.On("InsertTx", ctx, mock.Anything, mock.AnythingOfType("*models.AdminAction")).Return(nil)
	actions.On("HasActiveBanTx", ctx, mock.Anything, ownerID).Return(true, nil)

	removal, err := svc.RemoveListingWithStrike(ctx, adminID, listingID, "prohibited item")

	assert.NoError(t, err)
	assert.NotNil(t, removal)
	// Только запись об удалении: забаненный владелец не получает страйк
	actions.AssertNumberOfCalls(t, "InsertTx", 1)
	actions.AssertNotCalled(t, "CountStrikesTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationService_RemoveListing_AdminOwned_Forbidden(t *testing.T) {
	actions, users, listings, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	ownerID := uuid.New()
	listingID := uuid.New()

	listing := &models.Listing{ID: listingID, SellerID: ownerID}

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	users.On("GetByID", ctx, ownerID).Return(adminUser(ownerID), nil)
	listings.On("GetByID", ctx, listingID).Return(listing, nil)

	_, err := svc.RemoveListingWithStrike(ctx, adminID, listingID, "prohibited item")

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	listings.AssertNotCalled(t, "HardDeleteTx", mock.Anything, mock.Anything, mock.Anything)
	actions.AssertNotCalled(t, "InsertTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationService_RemoveListing_NotFound(t *testing.T) {
	_, users, listings, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	listingID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	listings.On("GetByID", ctx, listingID).Return(nil, repository.ErrListingNotFound)

	_, err := svc.RemoveListingWithStrike(ctx, adminID, listingID, "prohibited item")

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestModerationService_Revoke_ManualStrike(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()
	actionID := uuid.New()

	strike := &models.AdminAction{
		ID:           actionID,
		TargetUserID: &targetID,
		ActionType:   models.ActionTypeStrike,
		Origin:       models.ActionOriginManual,
	}

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	actions.On("GetByID", ctx, actionID).Return(strike, nil)
	actions.On("DeleteTx", ctx, mock.Anything, actionID).Return(nil)

	err := svc.Delete(ctx, actionID, adminID)

	assert.NoError(t, err)
	actions.AssertNumberOfCalls(t, "DeleteTx", 1)
	actions.AssertNotCalled(t, "LatestStrikeTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationService_Revoke_AutoBanCascadesLatestStrike(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()
	banID := uuid.New()
	strikeID := uuid.New()

	autoBan := &models.AdminAction{
		ID:           banID,
		TargetUserID: &targetID,
		ActionType:   models.ActionTypeBan,
		Origin:       models.ActionOriginAutoEscalation,
	}
	latestStrike := &models.AdminAction{
		ID:           strikeID,
		TargetUserID: &targetID,
		ActionType:   models.ActionTypeStrike,
	}

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	actions.On("GetByID", ctx, banID).Return(autoBan, nil)
	actions.On("LatestStrikeTx", ctx, mock.Anything, targetID).Return(latestStrike, nil)
	actions.On("DeleteTx", ctx, mock.Anything, strikeID).Return(nil)
	actions.On("DeleteTx", ctx, mock.Anything, banID).Return(nil)

	err := svc.Delete(ctx, banID, adminID)

	assert.NoError(t, err)
	// Авто-бан и последний страйк удаляются вместе
	actions.AssertNumberOfCalls(t, "DeleteTx", 2)
}

func TestModerationService_Revoke_AutoBanWithoutStrikes(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()
	banID := uuid.New()

	autoBan := &models.AdminAction{
		ID:           banID,
		TargetUserID: &targetID,
		ActionType:   models.ActionTypeBan,
		Origin:       models.ActionOriginAutoEscalation,
	}

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	actions.On("GetByID", ctx, banID).Return(autoBan, nil)
	actions.On("LatestStrikeTx", ctx, mock.Anything, targetID).Return(nil, repository.ErrActionNotFound)
	actions.On("DeleteTx", ctx, mock.Anything, banID).Return(nil)

	err := svc.Delete(ctx, banID, adminID)

	assert.NoError(t, err)
	actions.AssertNumberOfCalls(t, "DeleteTx", 1)
}

func TestModerationService_Revoke_ManualBanNoCascade(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()
	banID := uuid.New()

	manualBan := &models.AdminAction{
		ID:           banID,
		TargetUserID: &targetID,
		ActionType:   models.ActionTypeBan,
		Origin:       models.ActionOriginManual,
	}

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	actions.On("GetByID", ctx, banID).Return(manualBan, nil)
	actions.On("DeleteTx", ctx, mock.Anything, banID).Return(nil)

	err := svc.Delete(ctx, banID, adminID)

	assert.NoError(t, err)
	actions.AssertNumberOfCalls(t, "DeleteTx", 1)
	actions.AssertNotCalled(t, "LatestStrikeTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationService_Revoke_SelfTarget_Forbidden(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	actionID := uuid.New()

	action := &models.AdminAction{
		ID:           actionID,
		TargetUserID: &adminID,
		ActionType:   models.ActionTypeStrike,
		Origin:       models.ActionOriginManual,
	}

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	actions.On("GetByID", ctx, actionID).Return(action, nil)

	err := svc.Delete(ctx, actionID, adminID)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	actions.AssertNotCalled(t, "DeleteTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationService_Revoke_NotFound(t *testing.T) {
	actions, users, _, svc := newModerationFixture()
	ctx := context.Background()

	adminID := uuid.New()
	actionID := uuid.New()

	users.On("GetByID", ctx, adminID).Return(adminUser(adminID), nil)
	actions.On("GetByID", ctx, actionID).Return(nil, repository.ErrActionNotFound)

	err := svc.Delete(ctx, actionID, adminID)

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestModerationService_GetFiltered_PaginationDefaults(t *testing.T) {
	actions, _, _, svc := newModerationFixture()
	ctx := context.Background()

	filter := models.AdminActionFilter{ActionType: models.ActionTypeStrike}
	actions.On("Search", ctx, filter, 20, 0).Return([]models.AdminAction{}, 0, nil)

	_, _, err := svc.GetFiltered(ctx, filter, -5, -1)

	assert.NoError(t, err)
	actions.AssertCalled(t, "Search", ctx, filter, 20, 0)
}

func TestModerationService_IsBanned(t *testing.T) {
	actions, _, _, svc := newModerationFixture()
	ctx := context.Background()

	userID := uuid.New()
	actions.On("HasActiveBan", ctx, userID).Return(true, nil)

	banned, err := svc.IsBanned(ctx, userID)

	assert.NoError(t, err)
	assert.True(t, banned)
}
