package httpx

// Page identifiers used by templates and navigation.
const (
	PageLanding         = "landing"
	PageLogin           = "login"
	PageRegister        = "register"
	PageRegisterSuccess = "register-success"
	PageDashboard       = "dashboard"
	PageDeleteConfirm   = "delete-confirm"
	PageNotFound        = "notfound"
)

// SessionCookieName is the cookie carrying the opaque session ID.
const SessionCookieName = "session_id"

// Post-action destinations.
const (
	pathLogin     = "/login"
	pathDashboard = "/dashboard"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "web/templates"       // From project root
	TemplatePathFromTest = "../../web/templates" // From internal/http test files
	StaticPathFromRoot   = "web/static"
)

// FormMode represents the mode of the position form.
type FormMode string

const (
	// FormModeEdit indicates the form is updating an existing position.
	FormModeEdit FormMode = "edit"
	// FormModeCreate indicates the form creates a new position.
	FormModeCreate FormMode = "create"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageLanding:         "landing-content",
	PageLogin:           "login-content",
	PageRegister:        "register-content",
	PageRegisterSuccess: "register-success-content",
	PageDashboard:       "dashboard-content",
	PageDeleteConfirm:   "delete-confirm-content",
	PageNotFound:        "notfound-content",
}

// ContentTemplateFor returns the content template for the given page.
// Falls back to landing-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "landing-content"
}
