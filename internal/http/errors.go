package httpx

import (
	"errors"
	"net/http"

	"github.com/minboot/ats-web/internal/domain/model"
	apperrors "github.com/minboot/ats-web/internal/errors"
)

// User-facing texts for errors whose backend detail is not shown.
const (
	MsgTryAgainLater   = "Something went wrong. Please try again later."
	MsgBadCredentials  = "Email or password is incorrect."
	MsgUnreachable     = "The server could not be reached. Please try again later."
	MsgSessionExpired  = "Your session has expired. Please sign in again."
	MsgAccessDenied    = "You do not have permission to do that."
	MsgTooManyAttempts = "Too many sign-in attempts. Please wait a minute and try again."
	MsgNoCompany       = "No company is linked to your account."
	MsgChatbotFallback = "The assistant could not answer right now. Please try again later."
	MsgDeleteRefused   = "Delete failed: a posting that has applicants cannot be deleted."
)

// failAction is what a screen does with a failed backend call.
type failAction int

const (
	// failInline shows UserMessage(err) in place.
	failInline failAction = iota
	// failLogin re-checks the session and sends the visitor to sign in.
	failLogin
	// failDeny sends the visitor to the access-denied page.
	failDeny
	// failSilent renders nothing; the request was abandoned or superseded.
	failSilent
)

func classifyFailure(err error) failAction {
	switch {
	case apperrors.IsCanceled(err):
		return failSilent
	case apperrors.IsUnauthorized(err):
		return failLogin
	case apperrors.IsForbidden(err):
		return failDeny
	default:
		return failInline
	}
}

// UserMessage translates err to the text shown to the visitor. Backend validation
// messages are passed through verbatim; transport and server failures are generic.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *model.JobRequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeConflict, apperrors.ErrCodeNotFound:
		if msg := apperrors.GetMessage(err); msg != "" {
			return msg
		}
		return MsgTryAgainLater
	case apperrors.ErrCodeUnauthorized:
		return MsgSessionExpired
	case apperrors.ErrCodeForbidden:
		return MsgAccessDenied
	case apperrors.ErrCodeCanceled:
		return ""
	default:
		return MsgTryAgainLater
	}
}

// statusFor picks the response status for a page that failed to load.
func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeValidation, apperrors.ErrCodeConflict:
		return http.StatusBadRequest
	case apperrors.ErrCodeTransport:
		return http.StatusBadGateway
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
