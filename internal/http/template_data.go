package httpx

import (
	"net/http"
)

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// LayoutUser is the signed-in user as shown in the navbar.
type LayoutUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	title := meta.Title
	if title == "" {
		title = "FreelanceHub"
	} else {
		title += " | FreelanceHub"
	}
	data := map[string]any{
		"Title":           title,
		"PageTitle":       meta.PageTitle,
		"CurrentPage":     meta.CurrentPage,
		"IsAuthenticated": false,
	}

	if token := GetCSRFToken(r); token != "" {
		data["CSRFToken"] = token
	}
	if sess, ok := GetUserSessionFromContext(r.Context()); ok {
		data["IsAuthenticated"] = true
		data["User"] = LayoutUser{
			ID:    sess.User.ID.String(),
			Name:  sess.DisplayName(),
			Email: sess.User.Email,
			Role:  sess.User.Role,
		}
	}
	return data
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a new TemplateDataBuilder initialized with basePageData.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(r, meta)}
}

// WithError sets a general error message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	if msg == "" {
		return b
	}
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithNotice sets a success message.
func (b *TemplateDataBuilder) WithNotice(msg string) *TemplateDataBuilder {
	if msg != "" {
		b.data["Notice"] = msg
	}
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// WithAll adds every entry of m to the template data.
func (b *TemplateDataBuilder) WithAll(m map[string]any) *TemplateDataBuilder {
	for k, v := range m {
		b.data[k] = v
	}
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	if _, ok := b.data["Errors"]; !ok {
		b.data["Errors"] = map[string]string{}
	}
	return b.data
}
