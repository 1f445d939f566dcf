// internal/handlers/car_request.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/autoimport-backend/internal/i18n"
	"github.com/javajoker/autoimport-backend/internal/services"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

type CarRequestHandler struct {
	carRequests *services.CarRequestService
}

func NewCarRequestHandler(carRequests *services.CarRequestService) *CarRequestHandler {
	return &CarRequestHandler{carRequests: carRequests}
}

// GET /admin/car-requests
func (h *CarRequestHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.carRequests.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /admin/car-requests/:id
func (h *CarRequestHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.carRequests.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// PUT /admin/car-requests/:id
func (h *CarRequestHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCarRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.carRequests.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// POST /admin/car-requests/:id/send-offer
func (h *CarRequestHandler) SendOffer(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SendOfferRequest
	if !bindJSON(c, &req) {
		return
	}

	sent, err := h.carRequests.SendOffer(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOfferSent),
		"sent":    sent,
	})
}
