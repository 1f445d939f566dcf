// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyError         = "error"
	KeyInternalError = "error.internal"
	KeyRateLimited   = "error.rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserSuspended      = "auth.user_suspended"
	KeyAuthWrongPassword      = "auth.wrong_password"
	KeyAuthPasswordChanged    = "auth.password_changed"
	KeyAuthProfileUpdated     = "auth.profile_updated"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"
	KeyAdminCannotModify = "admin.cannot_modify_admin"
	KeyUserNotFound      = "user.not_found"
	KeyUserStatusUpdated = "user.status_updated"

	// Contracts
	KeyContractNotFound          = "contract.not_found"
	KeyContractCreated           = "contract.created"
	KeyContractUpdated           = "contract.updated"
	KeyContractDeleted           = "contract.deleted"
	KeyContractSigned            = "contract.signed"
	KeyContractSent              = "contract.sent"
	KeyContractClientSigned      = "contract.client_signed"
	KeyContractSignatureRequired = "contract.signature_required"
	KeyContractInvalidTransition = "contract.invalid_transition"
	KeyContractBusy              = "contract.busy"
	KeyConfirmSend               = "contract.confirm_send"
	KeyConfirmDelete             = "contract.confirm_delete"
	KeyConfirmationRequired      = "contract.confirmation_required"
	KeyInvalidSignature          = "contract.invalid_signature"
	KeyContractExportFailed      = "contract.export_failed"

	// Identity documents
	KeyIdentityNotFound = "identity.not_found"

	// Car requests
	KeyCarRequestNotFound = "car_request.not_found"
	KeyOfferSent          = "car_request.offer_sent"
	KeyClientEmailMissing = "car_request.client_email_missing"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)
