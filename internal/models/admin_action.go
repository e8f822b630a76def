package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionTypeStrike         = "strike"
	ActionTypeBan            = "ban"
	ActionTypeListingRemoval = "listing_removal"

	ActionOriginManual         = "manual"
	ActionOriginAutoEscalation = "auto_escalation"
)

// MaxActionReasonLength ограничивает длину причины действия модератора.
const MaxActionReasonLength = 255

// AdminAction — запись журнала модерации. Строки не обновляются после
// создания и удаляются только через явную операцию отзыва.
// AdminID и TargetUserID становятся NULL только при удалении самих
// аккаунтов: журнал переживает своих участников.
type AdminAction struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	AdminID         *uuid.UUID `db:"admin_id" json:"admin_id,omitempty"`
	TargetUserID    *uuid.UUID `db:"target_user_id" json:"target_user_id,omitempty"`
	TargetListingID *uuid.UUID `db:"target_listing_id" json:"target_listing_id,omitempty"`
	ActionType      string     `db:"action_type" json:"action_type"`
	Origin          string     `db:"origin" json:"origin"`
	Reason          *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt       *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}

// IsAutoBan сообщает, создан ли бан эскалацией страйков, а не админом.
func (a *AdminAction) IsAutoBan() bool {
	return a.ActionType == ActionTypeBan && a.Origin == ActionOriginAutoEscalation
}

// AdminActionFilter задаёт срез журнала для поиска с пагинацией.
type AdminActionFilter struct {
	AdminID         *uuid.UUID
	TargetUserID    *uuid.UUID
	TargetListingID *uuid.UUID
	ActionType      string
	Origin          string
}
