package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageHome           = "home"
	PageJobDetail      = "job-detail"
	PageJobForm        = "job-form"
	PageManage         = "manage"
	PageLogin          = "login"
	PageSignup         = "signup"
	PageResetPassword  = "reset-password"
	PageProfile        = "profile"
	PageWithdraw       = "withdraw"
	PageAccessDenied   = "access-denied"
	PageSessionPending = "session-pending"
)

// Fragment targets swapped by htmx.
const (
	TargetJobResults    = "job-results"
	TargetManageResults = "manage-results"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// WithdrawPhrase must be typed to confirm account withdrawal.
const WithdrawPhrase = "withdraw"

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	FormModeEdit   FormMode = "edit"
	FormModeCreate FormMode = "create"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageHome:           "home-content",
	PageJobDetail:      "job-detail-content",
	PageJobForm:        "job-form-content",
	PageManage:         "manage-content",
	PageLogin:          "login-content",
	PageSignup:         "signup-content",
	PageResetPassword:  "reset-password-content",
	PageProfile:        "profile-content",
	PageWithdraw:       "withdraw-content",
	PageAccessDenied:   "access-denied-content",
	PageSessionPending: "session-pending-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to home-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "home-content"
}

// notices are fixed texts selected by the notice query parameter after a redirect.
//
//nolint:gochecknoglobals // static read-only lookup
var notices = map[string]string{
	"signed_up":     "Your account was created. Please sign in.",
	"job_created":   "The posting was created.",
	"job_updated":   "The posting was updated.",
	"job_deleted":   "The posting was deleted.",
	"status_failed": "The posting was saved but its status could not be changed.",
	"withdrawn":     "Your account was closed. Thank you for using the service.",
	"signed_out":    "You have been signed out.",
	"profile_saved": "Your profile was updated.",
}

func noticeText(key string) string { return notices[key] }
