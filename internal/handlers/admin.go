// internal/handlers/admin.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/autoimport-backend/internal/i18n"
	"github.com/javajoker/autoimport-backend/internal/services"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /admin/clients
func (h *AdminHandler) GetClients(c *gin.Context) {
	filter := services.AdminClientFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if after := c.Query("created_after"); after != "" {
		if t, err := time.Parse(time.RFC3339, after); err == nil {
			filter.CreatedAfter = &t
		}
	}
	if before := c.Query("created_before"); before != "" {
		if t, err := time.Parse(time.RFC3339, before); err == nil {
			filter.CreatedBefore = &t
		}
	}

	result, err := h.adminService.GetClients(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// PUT /admin/clients/:id/status
func (h *AdminHandler) UpdateClientStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateClientStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := currentUserID(c)

	user, err := h.adminService.UpdateClientStatus(c.Request.Context(), userID, req, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserStatusUpdated),
		"user":    user,
	})
}
