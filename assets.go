// Package positionsui provides embedded assets for production builds.
package positionsui

import "embed"

// In dev mode (IsDev=true) templates are read from disk instead.

//go:embed web/templates
var TemplateFS embed.FS

//go:embed web/static
var StaticFS embed.FS
