package httpx

import (
	"log/slog"
	"net/http"
)

// Home renders the landing page with the first few postings as featured jobs.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	builder := NewTemplateData(r, PageMeta{
		PageTitle:   "Find Your Next Freelance Project",
		CurrentPage: PageHome,
	}).With("Categories", h.Jobs.Categories())

	featured, err := h.Jobs.Featured(r.Context(), FeaturedJobCount)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "failed to load featured jobs", slog.Any("error", err))
		builder.WithError("Featured jobs are unavailable right now.")
	}
	builder.With("FeaturedJobs", featured)

	h.renderPage(w, r, builder.Build(), http.StatusOK)
}
