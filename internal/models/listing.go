package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ListingStatusActive   = "active"
	ListingStatusSold     = "sold"
	ListingStatusArchived = "archived"

	ListingCategoryTextbooks    = "textbooks"
	ListingCategoryElectronics  = "electronics"
	ListingCategoryFurniture    = "furniture"
	ListingCategoryClothing     = "clothing"
	ListingCategoryTickets      = "tickets"
	ListingCategoryServices     = "services"
	ListingCategoryOther        = "other"
)

// Listing описывает объявление о продаже на кампусной барахолке.
type Listing struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	SellerID    uuid.UUID      `db:"seller_id" json:"seller_id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Price       float64        `db:"price" json:"price"`
	Category    string         `db:"category" json:"category"`
	Status      string         `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
	Photos      []ListingPhoto `json:"photos,omitempty"`
}

// ListingPhoto описывает фотографию, прикреплённую к объявлению.
type ListingPhoto struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	FilePath  string    `db:"file_path" json:"file_path"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ListingFilterParams задаёт фильтры публичного списка объявлений.
type ListingFilterParams struct {
	Category string
	Search   string
	SellerID *uuid.UUID
	Limit    int
	Offset   int
}
