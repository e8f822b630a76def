package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ekuznetsov/campus-market-backend/internal/models"
)

var (
	ErrActionNotFound = errors.New("admin action not found")

	// ErrDuplicateActiveBan сигнализирует срабатывание частичного уникального
	// индекса по активным банам: две конкурентные транзакции прошли проверку,
	// но зафиксироваться смогла только одна.
	ErrDuplicateActiveBan = errors.New("duplicate active ban")
)

// AdminActionRepository — слой доступа к журналу модерации (admin_actions).
// Для вставки и удаления есть две формы: самостоятельная и участвующая в
// транзакции вызывающей стороны; сервис эскалации использует вторую.
type AdminActionRepository struct {
	db *sqlx.DB
}

func NewAdminActionRepository(db *sqlx.DB) *AdminActionRepository {
	return &AdminActionRepository{db: db}
}

func (r *AdminActionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAction, error) {
	var action models.AdminAction
	err := r.db.GetContext(ctx, &action, `SELECT * FROM admin_actions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("admin action repository: get by id %w", err)
	}
	return &action, nil
}

func (r *AdminActionRepository) Insert(ctx context.Context, action *models.AdminAction) error {
	return r.insert(ctx, r.db, action)
}

func (r *AdminActionRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, action *models.AdminAction) error {
	return r.insert(ctx, tx, action)
}

func (r *AdminActionRepository) insert(ctx context.Context, ext sqlx.ExtContext, action *models.AdminAction) error {
	query := `
		INSERT INTO admin_actions (admin_id, target_user_id, target_listing_id, action_type, origin, reason, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	if err := ext.QueryRowxContext(
		ctx, query,
		action.AdminID, action.TargetUserID, action.TargetListingID,
		action.ActionType, action.Origin, action.Reason, action.ExpiresAt,
	).Scan(&action.ID, &action.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateActiveBan
		}
		return fmt.Errorf("admin action repository: insert %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *AdminActionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, r.db, id)
}

func (r *AdminActionRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	return r.delete(ctx, tx, id)
}

func (r *AdminActionRepository) delete(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) error {
	res, err := ext.ExecContext(ctx, `DELETE FROM admin_actions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("admin action repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrActionNotFound
	}
	return nil
}

// HasActiveBan — точечная проверка существования действующего бана.
func (r *AdminActionRepository) HasActiveBan(ctx context.Context, userID uuid.UUID) (bool, error) {
	return r.hasActiveBan(ctx, r.db, userID)
}

func (r *AdminActionRepository) HasActiveBanTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (bool, error) {
	return r.hasActiveBan(ctx, tx, userID)
}

func (r *AdminActionRepository) hasActiveBan(ctx context.Context, ext sqlx.ExtContext, userID uuid.UUID) (bool, error) {
	var banned bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM admin_actions
			WHERE target_user_id = $1
			  AND action_type = $2
			  AND (expires_at IS NULL OR expires_at > NOW())
		)
	`
	if err := sqlx.GetContext(ctx, ext, &banned, query, userID, models.ActionTypeBan); err != nil {
		return false, fmt.Errorf("admin action repository: has active ban %w", err)
	}
	return banned, nil
}

// CountStrikes — точечный подсчёт страйков пользователя.
func (r *AdminActionRepository) CountStrikes(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.countStrikes(ctx, r.db, userID)
}

func (r *AdminActionRepository) CountStrikesTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (int, error) {
	return r.countStrikes(ctx, tx, userID)
}

func (r *AdminActionRepository) countStrikes(ctx context.Context, ext sqlx.ExtContext, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM admin_actions WHERE target_user_id = $1 AND action_type = $2`
	if err := sqlx.GetContext(ctx, ext, &count, query, userID, models.ActionTypeStrike); err != nil {
		return 0, fmt.Errorf("admin action repository: count strikes %w", err)
	}
	return count, nil
}

// LatestStrikeTx возвращает самый свежий страйк пользователя внутри
// транзакции отзыва авто-бана.
func (r *AdminActionRepository) LatestStrikeTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*models.AdminAction, error) {
	var action models.AdminAction
	query := `
		SELECT * FROM admin_actions
		WHERE target_user_id = $1 AND action_type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	err := sqlx.GetContext(ctx, tx, &action, query, userID, models.ActionTypeStrike)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("admin action repository: latest strike %w", err)
	}
	return &action, nil
}

func (r *AdminActionRepository) ListByTargetUser(ctx context.Context, userID uuid.UUID) ([]models.AdminAction, error) {
	return r.listWhere(ctx, "target_user_id = $1", userID)
}

func (r *AdminActionRepository) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.AdminAction, error) {
	return r.listWhere(ctx, "admin_id = $1", adminID)
}

func (r *AdminActionRepository) ListByTargetListing(ctx context.Context, listingID uuid.UUID) ([]models.AdminAction, error) {
	return r.listWhere(ctx, "target_listing_id = $1", listingID)
}

func (r *AdminActionRepository) ListByType(ctx context.Context, actionType string) ([]models.AdminAction, error) {
	return r.listWhere(ctx, "action_type = $1", actionType)
}

func (r *AdminActionRepository) listWhere(ctx context.Context, clause string, arg interface{}) ([]models.AdminAction, error) {
	var actions []models.AdminAction
	query := `SELECT * FROM admin_actions WHERE ` + clause + ` ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &actions, query, arg); err != nil {
		return nil, fmt.Errorf("admin action repository: list %w", err)
	}
	return actions, nil
}

// Search возвращает страницу журнала по фильтрам вместе с общим числом
// строк для метаданных пагинации. Сортировка стабильная, новые сверху.
func (r *AdminActionRepository) Search(ctx context.Context, filter models.AdminActionFilter, limit, offset int) ([]models.AdminAction, int, error) {
	countQuery := `SELECT COUNT(*) FROM admin_actions WHERE 1=1`
	query := `SELECT * FROM admin_actions WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	addClause := func(clause string, arg interface{}) {
		c := fmt.Sprintf(clause, argIndex)
		query += c
		countQuery += c
		args = append(args, arg)
		argIndex++
	}

	if filter.AdminID != nil {
		addClause(" AND admin_id = $%d", *filter.AdminID)
	}
	if filter.TargetUserID != nil {
		addClause(" AND target_user_id = $%d", *filter.TargetUserID)
	}
	if filter.TargetListingID != nil {
		addClause(" AND target_listing_id = $%d", *filter.TargetListingID)
	}
	if filter.ActionType != "" {
		addClause(" AND action_type = $%d", filter.ActionType)
	}
	if filter.Origin != "" {
		addClause(" AND origin = $%d", filter.Origin)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("admin action repository: search count %w", err)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var actions []models.AdminAction
	if err := r.db.SelectContext(ctx, &actions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("admin action repository: search %w", err)
	}

	return actions, total, nil
}
