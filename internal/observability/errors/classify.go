// Package errors turns errors into low-cardinality labels for metrics and logs.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"net/url"
	"reflect"
	"strings"

	apperrors "github.com/freelancehub/web/internal/errors"
)

// Outcome label values for failed user API calls.
const (
	OutcomeTimeout     = "timeout"
	OutcomeCanceled    = "canceled"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
	OutcomeTransport   = "transport"
	OutcomeError       = "error"
)

// Outcome maps a failed call to one of the Outcome* labels, or "" for nil.
// Upstream statuses split into client and server errors; a request that never
// got a response is a transport failure unless it timed out or was canceled.
func Outcome(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case apperrors.IsTimeout(err), goerrors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case apperrors.IsCanceled(err), goerrors.Is(err, context.Canceled):
		return OutcomeCanceled
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeTimeout
	}

	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) && appErr.Status >= 400 {
		if appErr.Status >= 500 {
			return OutcomeServerError
		}
		return OutcomeClientError
	}

	var urlErr *url.Error
	if goerrors.As(err, &urlErr) {
		return OutcomeTransport
	}
	return OutcomeError
}

// Classify names the innermost concrete error type in snake case, e.g.
// "net_operror" or "json_syntaxerror". It returns "" for nil.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for {
		inner := goerrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
}
