package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// IsHTMX reports whether the request was initiated by htmx (Hx-Request: true).
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// IsBoosted reports whether the request was initiated by hx-boost (Hx-Boosted: true).
func IsBoosted(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Boosted"), "true")
}

// WantsPartial returns true when the handler should return only the main fragment.
// Boosted navigation swaps the whole body and needs the full layout.
func WantsPartial(r *http.Request) bool {
	return IsHTMX(r) && !IsBoosted(r)
}

// HXTarget returns the id of the target element being updated.
func HXTarget(r *http.Request) string { return r.Header.Get("Hx-Target") }

// HTMXResponse provides a fluent API for building HTMX responses.
type HTMXResponse struct {
	w http.ResponseWriter
}

// HTMX creates a new HTMXResponse.
func HTMX(w http.ResponseWriter) *HTMXResponse {
	return &HTMXResponse{w: w}
}

// Redirect sets Hx-Redirect and answers 204. The handler must not write afterwards.
func (h *HTMXResponse) Redirect(url string) {
	h.w.Header().Set("Hx-Redirect", url)
	h.w.WriteHeader(http.StatusNoContent)
}

// PushURL pushes url into the browser history for the new content.
func (h *HTMXResponse) PushURL(url string) *HTMXResponse {
	h.w.Header().Set("Hx-Push-Url", url)
	return h
}

// Trigger sets Hx-Trigger to {"<event>": payload}, or true when payload is nil.
func (h *HTMXResponse) Trigger(event string, payload any) *HTMXResponse {
	var value any = true
	if payload != nil {
		value = payload
	}
	b, err := json.Marshal(map[string]any{event: value})
	if err != nil {
		h.w.Header().Set("Hx-Trigger", `{"`+event+`":true}`)
		return h
	}
	h.w.Header().Set("Hx-Trigger", string(b))
	return h
}

// Toast levels understood by the client script.
const (
	ToastSuccess = "success"
	ToastError   = "error"
)

// triggerToast sends a showToast event for the client script.
func triggerToast(w http.ResponseWriter, message, level string) {
	if w == nil || strings.TrimSpace(message) == "" {
		return
	}
	HTMX(w).Trigger("showToast", map[string]string{"message": message, "type": level})
}

// redirect sends the browser to url: Hx-Redirect for htmx requests, 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		HTMX(w).Redirect(url)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
