// internal/handlers/identity.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/services"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

type IdentityHandler struct {
	identity *services.IdentityService
}

func NewIdentityHandler(identity *services.IdentityService) *IdentityHandler {
	return &IdentityHandler{identity: identity}
}

// GET /admin/identity/:userId
func (h *IdentityHandler) Lookup(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	lookup, err := h.identity.Lookup(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, lookup)
}

// PUT /admin/identity/:userId
func (h *IdentityHandler) Upsert(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var doc models.IdentityDocument
	if !bindJSON(c, &doc) {
		return
	}

	saved, err := h.identity.UpsertDocument(c.Request.Context(), userID, &doc)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, saved)
}
