package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ekuznetsov/campus-market-backend/internal/dto"
	"github.com/ekuznetsov/campus-market-backend/internal/http/handlers/common"
	"github.com/ekuznetsov/campus-market-backend/internal/models"
	"github.com/ekuznetsov/campus-market-backend/internal/service"
	"github.com/ekuznetsov/campus-market-backend/internal/storage"
)

// Разрешённые типы файлов для загрузки фотографий
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ListingHandler предоставляет HTTP слой для объявлений.
type ListingHandler struct {
	svc     *service.ListingService
	storage *storage.PhotoStorage
}

// NewListingHandler создаёт хэндлер.
func NewListingHandler(svc *service.ListingService, storage *storage.PhotoStorage) *ListingHandler {
	return &ListingHandler{svc: svc, storage: storage}
}

// CreateListing обрабатывает POST /listings.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.svc.CreateListing(c.Request.Context(), userID, service.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// GetListing обрабатывает GET /listings/:id.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.svc.GetListing(c.Request.Context(), listingID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// ListListings обрабатывает GET /listings.
func (h *ListingHandler) ListListings(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	params := models.ListingFilterParams{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := c.Query("seller_id"); raw != "" {
		sellerID, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "некорректный seller_id")
			return
		}
		params.SellerID = &sellerID
	}

	listings, total, err := h.svc.ListListings(c.Request.Context(), params)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListingPageResponse{
		Listings: listings,
		Total:    total,
		Limit:    params.Limit,
		Offset:   params.Offset,
	})
}

// UploadPhoto обрабатывает POST /listings/:id/photos.
func (h *ListingHandler) UploadPhoto(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}
	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		common.RespondBadRequest(c, "неподдерживаемый формат файла. Разрешены: .jpg, .jpeg, .png, .gif, .webp")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer src.Close()

	// Проверяем магические байты, а не только расширение
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		common.RespondBadRequest(c, "не удалось определить тип файла. Разрешены только изображения")
		return
	}

	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый тип файла (%s). Разрешены только изображения", contentType))
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			common.RespondError(c, http.StatusInternalServerError, "не удалось сбросить позицию файла")
			return
		}
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), listingID, file.Filename, src)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	photo := &models.ListingPhoto{
		ListingID: listingID,
		FilePath:  filepath.ToSlash(relativePath),
		FileType:  contentType,
		FileSize:  size,
	}
	if err := h.svc.AttachPhoto(c.Request.Context(), userID, photo); err != nil {
		// Файл уже на диске; репозиторий отказал, чистим за собой.
		_ = h.storage.Delete(c.Request.Context(), relativePath)
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, photo)
}
