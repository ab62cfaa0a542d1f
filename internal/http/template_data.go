package httpx

import (
	"net/http"
)

const appTitle = "Positions"

// PageMeta names the page being rendered.
type PageMeta struct {
	Title       string
	CurrentPage string
}

// basePageData holds what the layout needs on every page.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	title := appTitle
	if meta.Title != "" {
		title = meta.Title + " - " + appTitle
	}
	return map[string]any{
		"Title":           title,
		"CurrentPage":     meta.CurrentPage,
		"CSRFToken":       GetCSRFToken(r),
		"IsAuthenticated": GetSessionFromContext(r.Context()) != nil,
	}
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a new TemplateDataBuilder initialized with basePageData.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(r, meta)}
}

// WithError sets a general error message. Empty messages are ignored.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	if msg != "" {
		b.data["Error"] = true
		b.data["ErrorMessage"] = msg
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

// WithStatus sets the HTTP status the renderer writes.
func (b *TemplateDataBuilder) WithStatus(code int) *TemplateDataBuilder {
	b.data["Status"] = code
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}
