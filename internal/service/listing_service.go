package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ekuznetsov/campus-market-backend/internal/logger"
	"github.com/ekuznetsov/campus-market-backend/internal/models"
	"github.com/ekuznetsov/campus-market-backend/internal/moderation"
	"github.com/ekuznetsov/campus-market-backend/internal/pkg/apperror"
	"github.com/ekuznetsov/campus-market-backend/internal/repository"
	"github.com/ekuznetsov/campus-market-backend/internal/validation"
)

// ListingRepository описывает зависимости сервиса объявлений от хранилища.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	List(ctx context.Context, params models.ListingFilterParams) ([]models.Listing, int, error)
	AddPhoto(ctx context.Context, photo *models.ListingPhoto) error
	ListPhotos(ctx context.Context, listingID uuid.UUID) ([]models.ListingPhoto, error)
}

// ContentGate решает, допустимо ли содержимое объявления.
type ContentGate interface {
	Evaluate(user *models.User, title, description string) moderation.GateDecision
}

// StrikeRecorder фиксирует страйк за отклонённое объявление.
type StrikeRecorder interface {
	RecordViolationStrike(ctx context.Context, targetUserID uuid.UUID, reason string) (*StrikeOutcome, error)
}

// CreateListingInput содержит данные нового объявления.
type CreateListingInput struct {
	Title       string
	Description string
	Price       float64
	Category    string
}

// ListingService реализует публикацию и просмотр объявлений. Перед
// сохранением каждое объявление проходит через шлюз модерации.
type ListingService struct {
	listings ListingRepository
	users    ModerationUserDirectory
	gate     ContentGate
	strikes  StrikeRecorder
}

func NewListingService(listings ListingRepository, users ModerationUserDirectory, gate ContentGate, strikes StrikeRecorder) *ListingService {
	return &ListingService{
		listings: listings,
		users:    users,
		gate:     gate,
		strikes:  strikes,
	}
}

// CreateListing валидирует и публикует объявление. Нарушение политики
// контента отклоняет публикацию и выписывает автору страйк с причиной
// из вердикта сканера.
func (s *ListingService) CreateListing(ctx context.Context, sellerID uuid.UUID, in CreateListingInput) (*models.Listing, error) {
	seller, err := s.users.GetByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "user not found")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "listing: resolve seller failed")
	}

	if err := validation.ValidateListingTitle(in.Title); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateListingDescription(in.Description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice(in.Price); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	decision := s.gate.Evaluate(seller, in.Title, in.Description)
	if !decision.Allowed {
		// Страйк записывается до отказа; его сбой не должен пропустить
		// объявление, поэтому ошибка только логируется.
		if _, strikeErr := s.strikes.RecordViolationStrike(ctx, sellerID, decision.Reason); strikeErr != nil && logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"seller_id": sellerID,
				"error":     strikeErr.Error(),
			}).Error("failed to record violation strike")
		}
		return nil, apperror.New(apperror.ErrCodeValidation, decision.Reason)
	}

	listing := &models.Listing{
		SellerID:    sellerID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    normalizeCategory(in.Category),
		Status:      models.ListingStatusActive,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "listing: create failed")
	}

	return listing, nil
}

// GetListing возвращает объявление с фотографиями.
func (s *ListingService) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "listing not found")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "listing: get failed")
	}

	photos, err := s.listings.ListPhotos(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "listing: photos failed")
	}
	listing.Photos = photos

	return listing, nil
}

// ListListings возвращает страницу активных объявлений.
func (s *ListingService) ListListings(ctx context.Context, params models.ListingFilterParams) ([]models.Listing, int, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	listings, total, err := s.listings.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "listing: list failed")
	}
	return listings, total, nil
}

// AttachPhoto привязывает сохранённый файл к объявлению владельца.
func (s *ListingService) AttachPhoto(ctx context.Context, userID uuid.UUID, photo *models.ListingPhoto) error {
	listing, err := s.listings.GetByID(ctx, photo.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "listing not found")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "listing: resolve failed")
	}
	if listing.SellerID != userID {
		return apperror.New(apperror.ErrCodeForbidden, "only the seller can add photos")
	}

	if err := s.listings.AddPhoto(ctx, photo); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "listing: add photo failed")
	}
	return nil
}

func normalizeCategory(category string) string {
	switch category {
	case models.ListingCategoryTextbooks, models.ListingCategoryElectronics,
		models.ListingCategoryFurniture, models.ListingCategoryClothing,
		models.ListingCategoryTickets, models.ListingCategoryServices:
		return category
	default:
		return models.ListingCategoryOther
	}
}
