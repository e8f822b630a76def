package dto

import (
	"github.com/ekuznetsov/campus-market-backend/internal/models"
)

// ErrorResponse standard error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListingPageResponse represents a page of listings
type ListingPageResponse struct {
	Listings []models.Listing `json:"listings"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// AdminActionPageResponse represents a page of the moderation log
type AdminActionPageResponse struct {
	Actions []models.AdminAction `json:"actions"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}
