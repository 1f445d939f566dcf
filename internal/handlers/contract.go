// internal/handlers/contract.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/autoimport-backend/internal/i18n"
	"github.com/javajoker/autoimport-backend/internal/services"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

type ContractHandler struct {
	boards   *services.BoardRegistry
	exporter *services.ContractExporter
}

func NewContractHandler(boards *services.BoardRegistry, exporter *services.ContractExporter) *ContractHandler {
	return &ContractHandler{
		boards:   boards,
		exporter: exporter,
	}
}

type signBody struct {
	Signature string `json:"signature"`
}

// board returns the management screen of the calling admin.
func (h *ContractHandler) board(c *gin.Context) (*services.ContractBoard, bool) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return nil, false
	}
	return h.boards.For(adminID), true
}

// GET /admin/contracts
func (h *ContractHandler) List(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}

	if err := board.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, board.Snapshot())
}

// GET /admin/contracts/form/defaults
func (h *ContractHandler) FormDefaults(c *gin.Context) {
	utils.SuccessResponse(c, services.NewContractForm())
}

// POST /admin/contracts?autofill=true
func (h *ContractHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	board, ok := h.board(c)
	if !ok {
		return
	}

	var form services.ContractForm
	if !bindJSON(c, &form) {
		return
	}
	autofill, _ := strconv.ParseBool(c.Query("autofill"))

	contract, err := board.Create(c.Request.Context(), form, autofill)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyContractCreated),
		"contract": contract,
	})
}

// GET /admin/contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	contract, err := board.Open(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"contract": contract,
		"form":     services.FormFromContract(contract),
	})
}

// DELETE /admin/contracts/selection
func (h *ContractHandler) CloseDetail(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}
	board.Close()
	utils.SuccessResponse(c, board.Snapshot())
}

// DELETE /admin/contracts/selection/signature
func (h *ContractHandler) CancelSignature(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}
	if err := board.CancelSignature(); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, board.Snapshot())
}

// PUT /admin/contracts/:id
func (h *ContractHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	board, ok := h.board(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var form services.ContractForm
	if !bindJSON(c, &form) {
		return
	}

	contract, err := board.Update(c.Request.Context(), id, form)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyContractUpdated),
		"contract": contract,
	})
}

// DELETE /admin/contracts/:id?confirm=true
func (h *ContractHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	board, ok := h.board(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := board.Delete(c.Request.Context(), id, confirmation(c)); err != nil {
		respondDeclined(c, err, i18n.KeyConfirmDelete)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyContractDeleted),
		"board":   board.Snapshot(),
	})
}

// POST /admin/contracts/:id/sign
func (h *ContractHandler) Sign(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	board, ok := h.board(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body signBody
	if !bindJSON(c, &body) {
		return
	}
	signer, _ := currentUserID(c)

	contract, err := board.Sign(c.Request.Context(), id, body.Signature, signer)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyContractSigned),
		"contract": contract,
	})
}

// POST /admin/contracts/:id/send?confirm=true
func (h *ContractHandler) Send(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	board, ok := h.board(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	contract, err := board.SendToClient(c.Request.Context(), id, confirmation(c))
	if err != nil {
		respondDeclined(c, err, i18n.KeyConfirmSend)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyContractSent),
		"contract": contract,
	})
}

// POST /admin/contracts/:id/client-sign
func (h *ContractHandler) ClientSign(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	board, ok := h.board(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body signBody
	if !bindJSON(c, &body) {
		return
	}

	contract, err := board.SignAsClient(c.Request.Context(), id, services.SignRequest{Signature: body.Signature})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyContractClientSigned),
		"contract": contract,
	})
}

// GET /admin/contracts/:id/preview
func (h *ContractHandler) Preview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	html, hash, err := h.exporter.Preview(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	etag := `"` + hash + `"`
	c.Header("ETag", etag)
	if notModified(c, etag) {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// POST /admin/contracts/:id/export
func (h *ContractHandler) Export(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := board.Export(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}
