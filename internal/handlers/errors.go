// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/autoimport-backend/internal/i18n"
	"github.com/javajoker/autoimport-backend/internal/services"
	"github.com/javajoker/autoimport-backend/internal/signature"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

// respondError maps service errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var formErr *services.FormError
	switch {
	case errors.As(err, &formErr):
		utils.ValidationErrorResponse(c, formErr.Fields)
	case len(utils.GetValidationErrors(err)) > 0:
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	case errors.Is(err, services.ErrNotConfirmed):
		utils.ConfirmationRequiredResponse(c, i18n.T(lang, i18n.KeyConfirmationRequired))
	case errors.Is(err, services.ErrContractNotFound):
		utils.NotFoundResponse(c, "contract")
	case errors.Is(err, services.ErrIdentityNotFound):
		utils.NotFoundResponse(c, "identity")
	case errors.Is(err, services.ErrCarRequestNotFound):
		utils.NotFoundResponse(c, "car_request")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "user")
	case errors.Is(err, services.ErrSignatureRequired):
		utils.InvalidTransitionResponse(c, i18n.T(lang, i18n.KeyContractSignatureRequired))
	case errors.Is(err, services.ErrInvalidTransition):
		utils.InvalidTransitionResponse(c, i18n.T(lang, i18n.KeyContractInvalidTransition))
	case errors.Is(err, services.ErrInvalidSignature):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyInvalidSignature), err.Error())
	case errors.Is(err, services.ErrBoardBusy),
		errors.Is(err, signature.ErrCommitPending),
		errors.Is(err, signature.ErrPadClosed):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyContractBusy))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrWrongPassword):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyAuthWrongPassword), nil)
	case errors.Is(err, services.ErrUserSuspended):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthUserSuspended))
	case errors.Is(err, services.ErrCannotModifyAdmin):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAdminCannotModify))
	case errors.Is(err, services.ErrClientEmailMissing):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyClientEmailMissing), nil)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, err.Error())
	}
}

// respondDeclined is respondError with the prompt of the declined action.
func respondDeclined(c *gin.Context, err error, promptKey string) {
	if errors.Is(err, services.ErrNotConfirmed) {
		utils.ConfirmationRequiredResponse(c, i18n.T(utils.GetLangFromContext(c), promptKey))
		return
	}
	respondError(c, err)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// confirmation reads ?confirm=true or {"confirm": true}.
func confirmation(c *gin.Context) services.Confirmed {
	if ok, err := strconv.ParseBool(c.Query("confirm")); err == nil && ok {
		return true
	}

	var body struct {
		Confirm bool `json:"confirm"`
	}
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&body)
	}
	return services.Confirmed(body.Confirm)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

func notModified(c *gin.Context, etag string) bool {
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
