package httpx

import (
	"context"
	"errors"
	"maps"
	"net/http"

	apperrors "github.com/freelancehub/web/internal/errors"
)

const (
	errMsgFixBelow = "Please fix the errors below."
	errMsgGeneric  = "An error occurred. Please try again."
	errMsgTimeout  = "Request timed out. Please try again."
	errMsgCanceled = "Request was canceled."
)

// ErrorRenderer renders template data with the given status code.
type ErrorRenderer func(w http.ResponseWriter, r *http.Request, data map[string]any, status int)

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W http.ResponseWriter
	R *http.Request
	// Err is optional when only FieldErrors are reported.
	Err         error
	FieldErrors map[string]string
	// Renderer is typically h.renderPage.
	Renderer ErrorRenderer
	PageMeta PageMeta
	// Data is merged into the template data, e.g. to re-populate a form.
	Data map[string]any
	// Fallback is shown when Err carries no user message.
	Fallback string
	// StatusCode overrides ErrorStatus(Err) when non-zero.
	StatusCode int
	// ShowToast also sends a showToast event with the message.
	ShowToast bool
}

// ErrorStatus maps an error to the HTTP status of a full-page response.
func ErrorStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case apperrors.IsValidation(err):
		return http.StatusUnprocessableEntity
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsInvalidTransition(err), apperrors.IsConflict(err):
		return http.StatusConflict
	case apperrors.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case apperrors.IsRequestFailed(err):
		return requestFailedStatus(err)
	default:
		return http.StatusInternalServerError
	}
}

// requestFailedStatus passes upstream 4xx through; anything else is a bad gateway.
func requestFailedStatus(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status >= 400 && appErr.Status < 500 {
		return appErr.Status
	}
	return http.StatusBadGateway
}

// RenderError renders the page described by opts with an inline error alert
// and any field errors. htmx requests get status 200 so the fragment is swapped.
func RenderError(opts ErrorOpts) {
	if opts.Renderer == nil {
		http.Error(opts.W, "misconfigured error renderer", http.StatusInternalServerError)
		return
	}

	fieldErrors := maps.Clone(opts.FieldErrors)
	message := processError(opts.Err, opts.Fallback, &fieldErrors)
	if message == "" && len(fieldErrors) > 0 {
		message = errMsgFixBelow
	}

	builder := NewTemplateData(opts.R, opts.PageMeta).
		WithFieldErrors(fieldErrors).
		WithError(message)
	for k, v := range opts.Data {
		builder.With(k, v)
	}

	if opts.ShowToast && message != "" {
		triggerToast(opts.W, message, ToastError)
	}

	status := opts.StatusCode
	if status == 0 {
		status = ErrorStatus(opts.Err)
		if opts.Err == nil && len(fieldErrors) > 0 {
			status = http.StatusUnprocessableEntity
		}
	}
	if IsHTMX(opts.R) {
		status = http.StatusOK
	}

	opts.Renderer(opts.W, opts.R, builder.Build(), status)
}

// processError returns the user-facing message for err and merges any
// validation fields into fieldErrors.
func processError(err error, fallback string, fieldErrors *map[string]string) string {
	if err == nil {
		return ""
	}

	if apperrors.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return errMsgTimeout
	}
	if apperrors.IsCanceled(err) || errors.Is(err, context.Canceled) {
		return errMsgCanceled
	}

	if fields := apperrors.GetFields(err); len(fields) > 0 {
		if *fieldErrors == nil {
			*fieldErrors = make(map[string]string, len(fields))
		}
		maps.Copy(*fieldErrors, fields)
		return apperrors.UserMessage(err, errMsgFixBelow)
	}

	if fallback == "" {
		fallback = errMsgGeneric
	}
	if apperrors.IsInternal(err) {
		return fallback
	}
	return apperrors.UserMessage(err, fallback)
}
