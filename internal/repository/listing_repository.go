package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ekuznetsov/campus-market-backend/internal/models"
	"github.com/ekuznetsov/campus-market-backend/internal/repository/common"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (seller_id, title, description, price, category, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		listing.SellerID, listing.Title, listing.Description,
		listing.Price, listing.Category, listing.Status,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt); err != nil {
		return fmt.Errorf("listing repository: create %w", err)
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return common.GetByID[models.Listing](ctx, r.db, "listings", id, ErrListingNotFound)
}

// List возвращает страницу объявлений с фильтрами, новые сверху.
func (r *ListingRepository) List(ctx context.Context, params models.ListingFilterParams) ([]models.Listing, int, error) {
	countQuery := `SELECT COUNT(*) FROM listings WHERE status = 'active'`
	query := `SELECT * FROM listings WHERE status = 'active'`

	args := []interface{}{}
	argIndex := 1

	if params.Category != "" {
		clause := fmt.Sprintf(" AND category = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, params.Category)
		argIndex++
	}

	if params.Search != "" {
		clause := fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		query += clause
		countQuery += clause
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	if params.SellerID != nil {
		clause := fmt.Sprintf(" AND seller_id = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, *params.SellerID)
		argIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("listing repository: count %w", err)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, params.Limit, params.Offset)

	var listings []models.Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("listing repository: list %w", err)
	}

	return listings, total, nil
}

// HardDelete удаляет объявление отдельной операцией.
func (r *ListingRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("listing repository: delete %w", err)
	}
	return checkDeleted(res, ErrListingNotFound)
}

// HardDeleteTx удаляет объявление внутри транзакции вызывающей стороны.
func (r *ListingRepository) HardDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("listing repository: delete %w", err)
	}
	return checkDeleted(res, ErrListingNotFound)
}

// AddPhoto привязывает фотографию к объявлению.
func (r *ListingRepository) AddPhoto(ctx context.Context, photo *models.ListingPhoto) error {
	query := `
		INSERT INTO listing_photos (listing_id, file_path, file_type, file_size)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		photo.ListingID, photo.FilePath, photo.FileType, photo.FileSize,
	).Scan(&photo.ID, &photo.CreatedAt); err != nil {
		return fmt.Errorf("listing repository: add photo %w", err)
	}
	return nil
}

// ListPhotos возвращает фотографии объявления.
func (r *ListingRepository) ListPhotos(ctx context.Context, listingID uuid.UUID) ([]models.ListingPhoto, error) {
	var photos []models.ListingPhoto
	query := `SELECT * FROM listing_photos WHERE listing_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &photos, query, listingID); err != nil {
		return nil, fmt.Errorf("listing repository: list photos %w", err)
	}
	return photos, nil
}

func checkDeleted(res interface{ RowsAffected() (int64, error) }, notFoundErr error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFoundErr
	}
	return nil
}
