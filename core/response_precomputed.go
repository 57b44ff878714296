package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	// oks
	CodeOkEmailVerified          = "ok_email_verified"
	CodeOkVerificationRequested  = "ok_verification_requested"
	CodeOkPasswordResetRequested = "ok_password_reset_requested"
	CodeOkMagicLinkRequested     = "ok_magic_link_requested"
	CodeOkOtpRequested           = "ok_otp_requested"
	CodeOkEmailChangeRequested   = "ok_email_change_requested"
	CodeOkPasswordReset          = "ok_password_reset"
	CodeOkPasswordChanged        = "ok_password_changed"
	CodeOkOtpVerified            = "ok_otp_verified"
	CodeOkEmailChanged           = "ok_email_changed"

	// errors
	CodeErrorTokenGeneration                = "err_token_generation"
	CodeErrorInvalidRequest                 = "err_invalid_input"
	CodeErrorInvalidCredentials             = "err_invalid_credentials"
	CodeErrorPasswordMismatch               = "err_password_mismatch"
	CodeErrorMissingFields                  = "err_missing_fields"
	CodeErrorPasswordComplexity             = "err_password_complexity"
	CodeErrorEmailConflict                  = "err_email_conflict"
	CodeErrorInvalidProof                   = "err_invalid_or_expired_proof"
	CodeErrorInvalidOtpPurpose              = "err_invalid_otp_purpose"
	CodeErrorNotAuthorized                  = "err_not_authorized"
	CodeErrorAlreadyRequested               = "err_already_requested"
	CodeErrorTooManyRequests                = "err_too_many_requests"
	CodeErrorServiceUnavailable             = "err_service_unavailable"
	CodeErrorNoAuthHeader                   = "err_no_auth_header"
	CodeErrorInvalidTokenFormat             = "err_invalid_token_format"
	CodeErrorJwtInvalidSignMethod           = "err_invalid_sign_method"
	CodeErrorJwtTokenExpired                = "err_token_expired"
	CodeErrorJwtInvalidToken                = "err_invalid_token"
	CodeErrorInvalidOAuth2Provider          = "err_invalid_oauth2_provider"
	CodeErrorOAuth2TokenExchangeFailed      = "err_oauth2_token_exchange_failed"
	CodeErrorOAuth2UserInfoFailed           = "err_oauth2_user_info_failed"
	CodeErrorOAuth2UserInfoProcessingFailed = "err_oauth2_user_info_processing_failed"
	CodeErrorOAuth2DatabaseError            = "err_oauth2_database_error"
	CodeErrorAuthDatabaseError              = "err_auth_database_error"
	CodeErrorInvalidContentType             = "err_invalid_content_type"
)

// precomputeBasicResponse runs during initialization (before main()) and
// stores the marshaled JSON body, avoiding repeated marshaling during
// request handling. Every writeJsonError/writeJsonOk call simply copies the
// precomputed bytes to the response writer.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	// errors
	errorTokenGeneration       = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorTokenGeneration, "Failed to generate authentication token")
	errorInvalidRequest        = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorInvalidCredentials    = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Invalid credentials provided")
	errorPasswordMismatch      = precomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordMismatch, "Password and confirmation do not match")
	errorMissingFields         = precomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorPasswordComplexity    = precomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordComplexity, "Password must be at least 8 characters")
	errorEmailConflict         = precomputeBasicResponse(http.StatusConflict, CodeErrorEmailConflict, "Email address is already registered")
	errorInvalidProof          = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidProof, "Invalid or expired code")
	errorInvalidOtpPurpose     = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidOtpPurpose, "Invalid OTP purpose")
	errorNotAuthorized         = precomputeBasicResponse(http.StatusForbidden, CodeErrorNotAuthorized, "Not authorized to perform this action")
	errorAlreadyRequested      = precomputeBasicResponse(http.StatusConflict, CodeErrorAlreadyRequested, "A request for this address is already being processed")
	errorTooManyRequests       = precomputeBasicResponse(http.StatusTooManyRequests, CodeErrorTooManyRequests, "Too many requests, please try again later")
	errorServiceUnavailable    = precomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorServiceUnavailable, "Service is temporarily unavailable")
	errorNoAuthHeader          = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorNoAuthHeader, "Authorization header is required")
	errorInvalidTokenFormat    = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidTokenFormat, "Invalid authorization token format")
	errorJwtInvalidSignMethod  = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtInvalidSignMethod, "Invalid JWT signing method")
	errorJwtTokenExpired       = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtTokenExpired, "Authentication token has expired")
	errorJwtInvalidToken       = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtInvalidToken, "Invalid authentication token")
	errorInvalidOAuth2Provider = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidOAuth2Provider, "Invalid OAuth2 provider specified")

	errorOAuth2TokenExchangeFailed      = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2TokenExchangeFailed, "Failed to exchange OAuth2 token")
	errorOAuth2UserInfoFailed           = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2UserInfoFailed, "Failed to get user info from OAuth2 provider")
	errorOAuth2UserInfoProcessingFailed = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2UserInfoProcessingFailed, "Failed to process user info from OAuth2 provider")
	errorOAuth2DatabaseError            = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorOAuth2DatabaseError, "Database error during OAuth2 authentication")
	errorAuthDatabaseError              = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorAuthDatabaseError, "Database error during authentication")
	errorInvalidContentType             = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")

	// oks
	okEmailVerified          = precomputeBasicResponse(http.StatusOK, CodeOkEmailVerified, "Email verified successfully")
	okVerificationRequested  = precomputeBasicResponse(http.StatusAccepted, CodeOkVerificationRequested, "Verification email will be sent soon. Check your mailbox")
	okPasswordResetRequested = precomputeBasicResponse(http.StatusAccepted, CodeOkPasswordResetRequested, "Password reset instructions will be sent to your email if it exists in our system")
	okMagicLinkRequested     = precomputeBasicResponse(http.StatusAccepted, CodeOkMagicLinkRequested, "A login link will be sent to your email if it exists in our system")
	okOtpRequested           = precomputeBasicResponse(http.StatusAccepted, CodeOkOtpRequested, "A one-time code will be sent to your email")
	okEmailChangeRequested   = precomputeBasicResponse(http.StatusAccepted, CodeOkEmailChangeRequested, "Email change instructions will be sent to your new email address")
	okPasswordReset          = precomputeBasicResponse(http.StatusOK, CodeOkPasswordReset, "Password reset successfully")
	okPasswordChanged        = precomputeBasicResponse(http.StatusOK, CodeOkPasswordChanged, "Password changed successfully")
	okOtpVerified            = precomputeBasicResponse(http.StatusOK, CodeOkOtpVerified, "Code verified. You may now change your password")
	okEmailChanged           = precomputeBasicResponse(http.StatusOK, CodeOkEmailChanged, "Email address changed successfully")
)
