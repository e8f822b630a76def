package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ekuznetsov/campus-market-backend/internal/goroutine"
	"github.com/ekuznetsov/campus-market-backend/internal/logger"
	"github.com/ekuznetsov/campus-market-backend/internal/models"
	"github.com/ekuznetsov/campus-market-backend/internal/pkg/apperror"
	"github.com/ekuznetsov/campus-market-backend/internal/repository"
	"github.com/ekuznetsov/campus-market-backend/internal/validation"
)

// AdminActionRepository описывает зависимости сервиса от журнала модерации.
type AdminActionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAction, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, action *models.AdminAction) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	HasActiveBan(ctx context.Context, userID uuid.UUID) (bool, error)
	HasActiveBanTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (bool, error)
	CountStrikesTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (int, error)
	LatestStrikeTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*models.AdminAction, error)
	ListByTargetUser(ctx context.Context, userID uuid.UUID) ([]models.AdminAction, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.AdminAction, error)
	ListByTargetListing(ctx context.Context, listingID uuid.UUID) ([]models.AdminAction, error)
	ListByType(ctx context.Context, actionType string) ([]models.AdminAction, error)
	Search(ctx context.Context, filter models.AdminActionFilter, limit, offset int) ([]models.AdminAction, int, error)
}

// ModerationUserDirectory разрешает идентификаторы пользователей.
type ModerationUserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ModerationListingStore разрешает и удаляет объявления.
type ModerationListingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	HardDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
}

// TxManager выполняет функцию внутри одной транзакции базы.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(*sqlx.Tx) error) error
}

// ListingMediaCleaner удаляет файлы объявления. Вызывается после коммита,
// его ошибки не влияют на исход операции журнала.
type ListingMediaCleaner interface {
	DeleteAllForListing(ctx context.Context, listingID uuid.UUID) error
}

// StrikeOutcome — итог операции создания страйка.
type StrikeOutcome struct {
	Strike           *models.AdminAction `json:"strike"`
	StrikeCount      int                 `json:"strike_count"`
	AutoBanTriggered bool                `json:"auto_ban_triggered"`
	AutoBan          *models.AdminAction `json:"auto_ban,omitempty"`
}

// ModerationService — единственный компонент, которому разрешено изменять
// журнал модерации. Все многошаговые операции атомарны: либо фиксируются
// целиком, либо не оставляют следа.
type ModerationService struct {
	actions   AdminActionRepository
	users     ModerationUserDirectory
	listings  ModerationListingStore
	tx        TxManager
	media     ListingMediaCleaner
	threshold int
}

// NewModerationService создаёт сервис эскалации. Порог страйков передаётся
// при конструировании и обязан быть не менее 1.
func NewModerationService(
	actions AdminActionRepository,
	users ModerationUserDirectory,
	listings ModerationListingStore,
	tx TxManager,
	media ListingMediaCleaner,
	threshold int,
) *ModerationService {
	if threshold < 1 {
		threshold = 3
	}
	return &ModerationService{
		actions:   actions,
		users:     users,
		listings:  listings,
		tx:        tx,
		media:     media,
		threshold: threshold,
	}
}

// CreateStrike выписывает страйк от имени администратора. Если число
// страйков достигает порога, в той же транзакции создаётся автоматический
// перманентный бан.
func (s *ModerationService) CreateStrike(ctx context.Context, adminID, targetUserID uuid.UUID, reason string) (*StrikeOutcome, error) {
	if _, err := s.resolveAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if _, err := s.resolveTarget(ctx, targetUserID); err != nil {
		return nil, err
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}

	outcome, err := s.strikeInTx(ctx, &adminID, targetUserID, reason, models.ActionOriginManual)
	if err != nil {
		return nil, err
	}

	s.logAction("strike created", logrus.Fields{
		"admin_id":           adminID,
		"target_user_id":     targetUserID,
		"strike_count":       outcome.StrikeCount,
		"auto_ban_triggered": outcome.AutoBanTriggered,
	})
	return outcome, nil
}

// RecordViolationStrike выписывает страйк от имени системы: так шлюз
// модерации наказывает за отклонённое объявление. Администратор в записи
// отсутствует, origin помечает запись как автоматическую.
func (s *ModerationService) RecordViolationStrike(ctx context.Context, targetUserID uuid.UUID, reason string) (*StrikeOutcome, error) {
	if _, err := s.resolveTarget(ctx, targetUserID); err != nil {
		return nil, err
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}

	outcome, err := s.strikeInTx(ctx, nil, targetUserID, reason, models.ActionOriginAutoEscalation)
	if err != nil {
		return nil, err
	}

	s.logAction("automated strike recorded", logrus.Fields{
		"target_user_id":     targetUserID,
		"strike_count":       outcome.StrikeCount,
		"auto_ban_triggered": outcome.AutoBanTriggered,
	})
	return outcome, nil
}

// strikeInTx вставляет страйк, пересчитывает счётчик после вставки и при
// достижении порога добавляет авто-бан. Всё внутри одной транзакции.
func (s *ModerationService) strikeInTx(ctx context.Context, adminID *uuid.UUID, targetUserID uuid.UUID, reason, origin string) (*StrikeOutcome, error) {
	outcome := &StrikeOutcome{}

	err := s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		banned, err := s.actions.HasActiveBanTx(ctx, tx, targetUserID)
		if err != nil {
			return err
		}
		if banned {
			return apperror.New(apperror.ErrCodeConflict, "user already has an active ban")
		}

		strike := &models.AdminAction{
			AdminID:      adminID,
			TargetUserID: &targetUserID,
			ActionType:   models.ActionTypeStrike,
			Origin:       origin,
			Reason:       optionalReason(reason),
		}
		if err := s.actions.InsertTx(ctx, tx, strike); err != nil {
			return err
		}

		// Счётчик пересчитывается после вставки, чтобы проверка порога
		// видела собственную незафиксированную запись.
		count, err := s.actions.CountStrikesTx(ctx, tx, targetUserID)
		if err != nil {
			return err
		}

		outcome.Strike = strike
		outcome.StrikeCount = count

		if count >= s.threshold {
			banReason := capReason(fmt.Sprintf("Automatic permanent ban: %d strikes accumulated. Latest: %s", count, reason))
			ban := &models.AdminAction{
				AdminID:      adminID,
				TargetUserID: &targetUserID,
				ActionType:   models.ActionTypeBan,
				Origin:       models.ActionOriginAutoEscalation,
				Reason:       &banReason,
			}
			if err := s.actions.InsertTx(ctx, tx, ban); err != nil {
				return err
			}
			outcome.AutoBanTriggered = true
			outcome.AutoBan = ban
		}

		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "create strike")
	}

	return outcome, nil
}

// CreateBan выписывает перманентный бан напрямую, минуя страйки.
func (s *ModerationService) CreateBan(ctx context.Context, adminID, targetUserID uuid.UUID, reason string) (*models.AdminAction, error) {
	if _, err := s.resolveAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if _, err := s.resolveTarget(ctx, targetUserID); err != nil {
		return nil, err
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}

	ban := &models.AdminAction{
		AdminID:      &adminID,
		TargetUserID: &targetUserID,
		ActionType:   models.ActionTypeBan,
		Origin:       models.ActionOriginManual,
		Reason:       optionalReason(reason),
	}

	err := s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		banned, err := s.actions.HasActiveBanTx(ctx, tx, targetUserID)
		if err != nil {
			return err
		}
		if banned {
			return apperror.New(apperror.ErrCodeConflict, "user already has an active ban")
		}
		return s.actions.InsertTx(ctx, tx, ban)
	})
	if err != nil {
		return nil, asServiceError(err, "create ban")
	}

	s.logAction("ban created", logrus.Fields{
		"admin_id":       adminID,
		"target_user_id": targetUserID,
	})
	return ban, nil
}

// RemoveListingWithStrike удаляет объявление, фиксирует удаление в журнале
// и, если владелец ещё не забанен, выписывает ему страйк с возможной
// эскалацией в бан. Файлы объявления удаляются после коммита.
func (s *ModerationService) RemoveListingWithStrike(ctx context.Context, adminID, listingID uuid.UUID, reason string) (*models.AdminAction, error) {
	if _, err := s.resolveAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "listing not found")
		}
		return nil, asServiceError(err, "resolve listing")
	}

	owner, err := s.users.GetByID(ctx, listing.SellerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "listing owner not found")
		}
		return nil, asServiceError(err, "resolve listing owner")
	}
	if owner.IsAdmin() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "listings owned by administrators cannot be removed")
	}

	removal := &models.AdminAction{
		AdminID:         &adminID,
		TargetUserID:    &owner.ID,
		TargetListingID: &listing.ID,
		ActionType:      models.ActionTypeListingRemoval,
		Origin:          models.ActionOriginManual,
		Reason:          optionalReason(reason),
	}

	err = s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.listings.HardDeleteTx(ctx, tx, listing.ID); err != nil {
			return err
		}
		if err := s.actions.InsertTx(ctx, tx, removal); err != nil {
			return err
		}

		banned, err := s.actions.HasActiveBanTx(ctx, tx, owner.ID)
		if err != nil {
			return err
		}
		if banned {
			// Забаненный владелец не получает дополнительного наказания:
			// записи об удалении достаточно.
			return nil
		}

		strikeReason := capReason("Listing removed: " + reason)
		strike := &models.AdminAction{
			AdminID:      &adminID,
			TargetUserID: &owner.ID,
			ActionType:   models.ActionTypeStrike,
			Origin:       models.ActionOriginManual,
			Reason:       &strikeReason,
		}
		if err := s.actions.InsertTx(ctx, tx, strike); err != nil {
			return err
		}

		count, err := s.actions.CountStrikesTx(ctx, tx, owner.ID)
		if err != nil {
			return err
		}
		if count >= s.threshold {
			banReason := capReason(fmt.Sprintf("Automatic permanent ban: %d strikes accumulated. Latest: %s", count, strikeReason))
			ban := &models.AdminAction{
				AdminID:      &adminID,
				TargetUserID: &owner.ID,
				ActionType:   models.ActionTypeBan,
				Origin:       models.ActionOriginAutoEscalation,
				Reason:       &banReason,
			}
			if err := s.actions.InsertTx(ctx, tx, ban); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "remove listing")
	}

	// Файлы удаляются только после успешного коммита; их потеря не должна
	// выглядеть как сбой операции журнала.
	if s.media != nil {
		s.cleanupMedia(listing.ID)
	}

	s.logAction("listing removed", logrus.Fields{
		"admin_id":   adminID,
		"listing_id": listingID,
		"owner_id":   owner.ID,
	})
	return removal, nil
}

func (s *ModerationService) cleanupMedia(listingID uuid.UUID) {
	goroutine.SafeGo(func() {
		if err := s.media.DeleteAllForListing(context.Background(), listingID); err != nil && logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"listing_id": listingID,
				"error":      err.Error(),
			}).Error("listing media cleanup failed")
		}
	})
}

// Delete отзывает действие модератора. Отзыв авто-бана в той же транзакции
// удаляет последний страйк пользователя, иначе следующий же страйк снова
// довёл бы счётчик до порога.
func (s *ModerationService) Delete(ctx context.Context, actionID, requestingAdminID uuid.UUID) error {
	if _, err := s.resolveAdmin(ctx, requestingAdminID); err != nil {
		return err
	}

	action, err := s.actions.GetByID(ctx, actionID)
	if err != nil {
		if errors.Is(err, repository.ErrActionNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "action not found")
		}
		return asServiceError(err, "resolve action")
	}

	if action.TargetUserID != nil && *action.TargetUserID == requestingAdminID {
		return apperror.New(apperror.ErrCodeForbidden, "cannot revoke actions targeting yourself")
	}

	err = s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if action.IsAutoBan() && action.TargetUserID != nil {
			latest, err := s.actions.LatestStrikeTx(ctx, tx, *action.TargetUserID)
			switch {
			case err == nil:
				if err := s.actions.DeleteTx(ctx, tx, latest.ID); err != nil {
					return err
				}
			case errors.Is(err, repository.ErrActionNotFound):
				// У авто-бана без страйков каскадировать нечего.
			default:
				return err
			}
		}
		return s.actions.DeleteTx(ctx, tx, action.ID)
	})
	if err != nil {
		return asServiceError(err, "revoke action")
	}

	s.logAction("action revoked", logrus.Fields{
		"action_id":   actionID,
		"action_type": action.ActionType,
		"admin_id":    requestingAdminID,
	})
	return nil
}

// GetByID возвращает запись журнала.
func (s *ModerationService) GetByID(ctx context.Context, actionID uuid.UUID) (*models.AdminAction, error) {
	action, err := s.actions.GetByID(ctx, actionID)
	if err != nil {
		if errors.Is(err, repository.ErrActionNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "action not found")
		}
		return nil, asServiceError(err, "get action")
	}
	return action, nil
}

// GetFiltered возвращает страницу журнала и общее число строк.
func (s *ModerationService) GetFiltered(ctx context.Context, filter models.AdminActionFilter, limit, offset int) ([]models.AdminAction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	actions, total, err := s.actions.Search(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, asServiceError(err, "search actions")
	}
	return actions, total, nil
}

// GetUserHistory возвращает все действия против пользователя.
func (s *ModerationService) GetUserHistory(ctx context.Context, userID uuid.UUID) ([]models.AdminAction, error) {
	actions, err := s.actions.ListByTargetUser(ctx, userID)
	if err != nil {
		return nil, asServiceError(err, "user history")
	}
	return actions, nil
}

// GetListingHistory возвращает действия, связанные с объявлением.
func (s *ModerationService) GetListingHistory(ctx context.Context, listingID uuid.UUID) ([]models.AdminAction, error) {
	actions, err := s.actions.ListByTargetListing(ctx, listingID)
	if err != nil {
		return nil, asServiceError(err, "listing history")
	}
	return actions, nil
}

// GetAdminHistory возвращает действия, выписанные администратором.
func (s *ModerationService) GetAdminHistory(ctx context.Context, adminID uuid.UUID) ([]models.AdminAction, error) {
	actions, err := s.actions.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, asServiceError(err, "admin history")
	}
	return actions, nil
}

// ListBans возвращает все баны площадки.
func (s *ModerationService) ListBans(ctx context.Context) ([]models.AdminAction, error) {
	actions, err := s.actions.ListByType(ctx, models.ActionTypeBan)
	if err != nil {
		return nil, asServiceError(err, "list bans")
	}
	return actions, nil
}

// IsBanned сообщает, действует ли бан на пользователя.
func (s *ModerationService) IsBanned(ctx context.Context, userID uuid.UUID) (bool, error) {
	banned, err := s.actions.HasActiveBan(ctx, userID)
	if err != nil {
		return false, asServiceError(err, "check ban")
	}
	return banned, nil
}

func (s *ModerationService) resolveAdmin(ctx context.Context, adminID uuid.UUID) (*models.User, error) {
	admin, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "admin not found")
		}
		return nil, asServiceError(err, "resolve admin")
	}
	if !admin.IsAdmin() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only administrators can perform moderation actions")
	}
	return admin, nil
}

func (s *ModerationService) resolveTarget(ctx context.Context, targetUserID uuid.UUID) (*models.User, error) {
	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "user not found")
		}
		return nil, asServiceError(err, "resolve target")
	}
	// Администраторы не могут быть целью модерации; это правило заодно
	// исключает самомодерацию.
	if target.IsAdmin() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "administrators cannot be moderated")
	}
	return target, nil
}

func (s *ModerationService) logAction(message string, fields logrus.Fields) {
	if logger.Log != nil {
		logger.Log.WithFields(fields).Info(message)
	}
}

func validateReason(reason string) error {
	if err := validation.ValidateLength("reason", reason, 0, models.MaxActionReasonLength); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	return nil
}

// capReason обрезает составную причину до лимита колонки: пользовательский
// ввод проверен заранее, но служебный префикс может вывести строку за предел.
func capReason(reason string) string {
	runes := []rune(reason)
	if len(runes) <= models.MaxActionReasonLength {
		return reason
	}
	return string(runes[:models.MaxActionReasonLength])
}

func optionalReason(reason string) *string {
	if reason == "" {
		return nil
	}
	return &reason
}

// asServiceError пропускает бизнес-отказы как есть, а ошибки хранилища
// заворачивает в отдельный вид: после полного отката вызывающая сторона
// обязана трактовать их как "эффекта не было".
func asServiceError(err error, op string) error {
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, repository.ErrDuplicateActiveBan) {
		return apperror.New(apperror.ErrCodeConflict, "user already has an active ban")
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "moderation: "+op+" failed")
}
