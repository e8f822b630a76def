package dto

// RegisterRequest payload for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
}

// LoginRequest payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest payload for POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateListingRequest payload for POST /listings
type CreateListingRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	Category    string  `json:"category"`
}

// CreateStrikeRequest payload for POST /admin/strikes
type CreateStrikeRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required,uuid"`
	Reason       string `json:"reason"`
}

// CreateBanRequest payload for POST /admin/bans
type CreateBanRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required,uuid"`
	Reason       string `json:"reason"`
}

// RemoveListingRequest payload for DELETE /admin/listings/:id
type RemoveListingRequest struct {
	Reason string `json:"reason" binding:"required"`
}
