package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageHome        = "home"
	PageJobs        = "jobs"
	PagePostJob     = "post-job"
	PageProfile     = "profile"      // static profile page
	PageUserProfile = "user-profile" // guarded profile flow
	PageDeleteUser  = "user-delete"  // delete confirmation
	PageLogin       = "login"
	PageRegister    = "register"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"
	TemplatePathFromTest = "../../frontend/templates"
)

// Fragment templates rendered on their own for HTMX swaps.
const (
	FragmentJobList = "job-list"
)

const (
	// FeaturedJobCount is the number of postings shown on the home page.
	FeaturedJobCount = 3

	// MaxPictureBytes bounds profile picture uploads.
	MaxPictureBytes = 5 << 20
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageHome:        "home-content",
	PageJobs:        "jobs-content",
	PagePostJob:     "post-job-content",
	PageProfile:     "profile-content",
	PageUserProfile: "user-profile-content",
	PageDeleteUser:  "user-delete-content",
	PageLogin:       "login-content",
	PageRegister:    "register-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Unknown pages fall back to the home page.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return "home-content"
}
