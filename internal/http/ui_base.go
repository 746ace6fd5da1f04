package httpx

import (
	"html"
	"log/slog"
	"net/http"

	"github.com/freelancehub/web/internal/service"
)

// partialPageTemplate renders <title> plus the content block for htmx swaps of #main-content.
const partialPageTemplate = "partial-page"

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T        *TemplateRenderer
	Jobs     *service.JobCatalog
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Cookies  *SlotCookies
	IsDev    bool // Development mode flag for enhanced error reporting
	Logger   *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// renderPage renders data as a full page, or as the content fragment for
// non-boosted htmx requests. A zero status means 200.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	name := "layout"
	if WantsPartial(r) {
		name = partialPageTemplate
	}
	if err := h.T.Execute(w, View{Name: name, Data: data, Status: status}); err != nil {
		h.logAndRenderTemplateError(w, r, err, name)
	}
}

// renderFragment renders a single named template, e.g. the job list for a live search.
func (h *UIHandlers) renderFragment(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := h.T.Render(w, name, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, name)
	}
}

// renderError renders page with an inline alert for err.
func (h *UIHandlers) renderError(w http.ResponseWriter, r *http.Request, opts ErrorOpts) {
	opts.W, opts.R = w, r
	if opts.Renderer == nil {
		opts.Renderer = h.renderPage
	}
	RenderError(opts)
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, template string) {
	h.logger().ErrorContext(r.Context(), "template rendering failed",
		slog.Any("error", err),
		slog.String("template", template),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
	)

	if !h.IsDev {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	body := `<div class="alert alert-error"><h2>Template Rendering Error</h2>` +
		`<p><strong>Template:</strong> ` + html.EscapeString(template) + `</p>` +
		`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
		`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`
	if _, writeErr := w.Write([]byte(body)); writeErr != nil {
		h.logger().Error("failed to write template error response", slog.Any("error", writeErr))
	}
}

// NotFound renders the standalone error page with 404.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, PageMeta{Title: "Not Found"}).
		WithError("The page you are looking for does not exist.").
		With("StatusCode", http.StatusNotFound).
		Build()
	if err := h.T.Execute(w, View{Name: "error-layout", Data: data, Status: http.StatusNotFound}); err != nil {
		h.logAndRenderTemplateError(w, r, err, "error-layout")
	}
}

// Unmatched sends every unknown route to the login page.
func (h *UIHandlers) Unmatched(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, service.LoginPath)
}

// setSlotCookie points the browser at slot, logging failures.
func (h *UIHandlers) setSlotCookie(w http.ResponseWriter, r *http.Request, slot string) {
	if h.Cookies == nil {
		return
	}
	if err := h.Cookies.Write(w, r, slot); err != nil {
		h.logger().ErrorContext(r.Context(), "failed to write session cookie", slog.Any("error", err))
	}
}

// clearSlotCookie expires the browser's session cookie, logging failures.
func (h *UIHandlers) clearSlotCookie(w http.ResponseWriter, r *http.Request) {
	if h.Cookies == nil {
		return
	}
	if err := h.Cookies.Clear(w, r); err != nil {
		h.logger().ErrorContext(r.Context(), "failed to clear session cookie", slog.Any("error", err))
	}
}
