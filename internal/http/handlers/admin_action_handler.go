package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ekuznetsov/campus-market-backend/internal/dto"
	"github.com/ekuznetsov/campus-market-backend/internal/http/handlers/common"
	"github.com/ekuznetsov/campus-market-backend/internal/models"
	"github.com/ekuznetsov/campus-market-backend/internal/service"
)

// AdminActionHandler предоставляет HTTP слой журнала модерации.
type AdminActionHandler struct {
	svc *service.ModerationService
}

// NewAdminActionHandler создаёт хэндлер.
func NewAdminActionHandler(svc *service.ModerationService) *AdminActionHandler {
	return &AdminActionHandler{svc: svc}
}

// CreateStrike обрабатывает POST /admin/strikes.
func (h *AdminActionHandler) CreateStrike(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateStrikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	targetID, _ := uuid.Parse(req.TargetUserID)
	outcome, err := h.svc.CreateStrike(c.Request.Context(), adminID, targetID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, outcome)
}

// CreateBan обрабатывает POST /admin/bans.
func (h *AdminActionHandler) CreateBan(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateBanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	targetID, _ := uuid.Parse(req.TargetUserID)
	ban, err := h.svc.CreateBan(c.Request.Context(), adminID, targetID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ban)
}

// RemoveListing обрабатывает DELETE /admin/listings/:id.
func (h *AdminActionHandler) RemoveListing(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RemoveListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	removal, err := h.svc.RemoveListingWithStrike(c.Request.Context(), adminID, listingID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, removal)
}

// RevokeAction обрабатывает DELETE /admin/actions/:id.
func (h *AdminActionHandler) RevokeAction(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	actionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actionID, adminID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetAction обрабатывает GET /admin/actions/:id.
func (h *AdminActionHandler) GetAction(c *gin.Context) {
	actionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	action, err := h.svc.GetByID(c.Request.Context(), actionID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, action)
}

// SearchActions обрабатывает GET /admin/actions.
func (h *AdminActionHandler) SearchActions(c *gin.Context) {
	filter := models.AdminActionFilter{
		ActionType: c.Query("action_type"),
		Origin:     c.Query("origin"),
	}

	if raw := c.Query("admin_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "некорректный admin_id")
			return
		}
		filter.AdminID = &id
	}
	if raw := c.Query("target_user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "некорректный target_user_id")
			return
		}
		filter.TargetUserID = &id
	}
	if raw := c.Query("target_listing_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "некорректный target_listing_id")
			return
		}
		filter.TargetListingID = &id
	}

	limit, offset := common.GetPagination(c)
	actions, total, err := h.svc.GetFiltered(c.Request.Context(), filter, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AdminActionPageResponse{
		Actions: actions,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// UserHistory обрабатывает GET /admin/users/:id/actions.
func (h *AdminActionHandler) UserHistory(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	actions, err := h.svc.GetUserHistory(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, actions)
}

// ListingHistory обрабатывает GET /admin/listings/:id/actions.
func (h *AdminActionHandler) ListingHistory(c *gin.Context) {
	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	actions, err := h.svc.GetListingHistory(c.Request.Context(), listingID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, actions)
}

// MyActions обрабатывает GET /admin/actions/mine.
func (h *AdminActionHandler) MyActions(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	actions, err := h.svc.GetAdminHistory(c.Request.Context(), adminID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, actions)
}

// ListBans обрабатывает GET /admin/bans.
func (h *AdminActionHandler) ListBans(c *gin.Context) {
	bans, err := h.svc.ListBans(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, bans)
}
