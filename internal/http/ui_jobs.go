package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/freelancehub/web/internal/domain/model"
)

// MsgJobPosted is shown on the job list after a successful post.
const MsgJobPosted = "Job posted successfully!"

// jobsQuery is the parsed search box and category chip state.
type jobsQuery struct {
	Term     string
	Category string
}

func parseJobsQuery(q url.Values) jobsQuery {
	category := strings.TrimSpace(q.Get("category"))
	if category == "" {
		category = model.CategoryAll
	}
	return jobsQuery{Term: q.Get("q"), Category: category}
}

// URL returns the shareable /jobs URL for the query.
func (jq jobsQuery) URL() string {
	v := url.Values{}
	if jq.Term != "" {
		v.Set("q", jq.Term)
	}
	if jq.Category != "" && jq.Category != model.CategoryAll {
		v.Set("category", jq.Category)
	}
	if enc := v.Encode(); enc != "" {
		return "/jobs?" + enc
	}
	return "/jobs"
}

// JobsList renders the filtered job list. A live search from the search box
// (Hx-Target: job-list) gets only the list fragment.
func (h *UIHandlers) JobsList(w http.ResponseWriter, r *http.Request) {
	jq := parseJobsQuery(r.URL.Query())

	builder := NewTemplateData(r, PageMeta{Title: "Browse Jobs", PageTitle: "Browse Jobs", CurrentPage: PageJobs}).
		With("Query", jq.Term).
		With("Category", jq.Category).
		With("Categories", h.Jobs.Categories())
	if r.URL.Query().Get("posted") == "1" {
		builder.WithNotice(MsgJobPosted)
	}

	jobs, err := h.Jobs.Search(r.Context(), jq.Term, jq.Category)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "failed to search jobs",
			slog.String("q", jq.Term),
			slog.String("category", jq.Category),
			slog.Any("error", err))
		builder.WithError(processError(err, "Unable to load jobs. Please try again.", new(map[string]string)))
	}
	builder.With("Jobs", jobs)
	data := builder.Build()

	if IsHTMX(r) && HXTarget(r) == FragmentJobList {
		HTMX(w).PushURL(jq.URL())
		h.renderFragment(w, r, FragmentJobList, data)
		return
	}

	status := http.StatusOK
	if err != nil && !IsHTMX(r) {
		status = ErrorStatus(err)
	}
	h.renderPage(w, r, data, status)
}
