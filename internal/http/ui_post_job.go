package httpx

import (
	"net/http"
	"strings"

	"github.com/freelancehub/web/internal/domain/model"
)

const postJobActionPreview = "preview"

// postJobForm is the submitted form as re-displayed to the user.
type postJobForm struct {
	model.PostJobRequest
	SkillsRaw string
}

func parsePostJobForm(r *http.Request) postJobForm {
	raw := r.PostFormValue("skills")
	return postJobForm{
		PostJobRequest: model.PostJobRequest{
			Title:           r.PostFormValue("title"),
			Description:     r.PostFormValue("description"),
			Category:        r.PostFormValue("category"),
			JobType:         r.PostFormValue("jobType"),
			ExperienceLevel: r.PostFormValue("experienceLevel"),
			Budget:          r.PostFormValue("budget"),
			Currency:        r.PostFormValue("currency"),
			Deadline:        r.PostFormValue("deadline"),
			Duration:        r.PostFormValue("duration"),
			Skills:          model.ParseSkills(raw),
		},
		SkillsRaw: raw,
	}
}

func postJobMeta() PageMeta {
	return PageMeta{Title: "Post a Job", PageTitle: "Post a New Job", CurrentPage: PagePostJob}
}

// postJobData holds the select options shared by every render of the form.
func (h *UIHandlers) postJobData(form postJobForm) map[string]any {
	return map[string]any{
		"Form":             form,
		"Categories":       h.Jobs.Categories(),
		"JobTypes":         model.JobTypes(),
		"ExperienceLevels": model.ExperienceLevels(),
		"Currencies":       model.Currencies(),
		"CanPost":          h.Jobs.CanPost(),
	}
}

// PostJobForm renders an empty job form.
func (h *UIHandlers) PostJobForm(w http.ResponseWriter, r *http.Request) {
	form := postJobForm{PostJobRequest: model.PostJobRequest{Currency: model.Currencies()[0]}}
	builder := NewTemplateData(r, postJobMeta())
	for k, v := range h.postJobData(form) {
		builder.With(k, v)
	}
	h.renderPage(w, r, builder.Build(), http.StatusOK)
}

// PostJobSubmit validates the form and either previews the posting
// (action=preview) or stores it and redirects to the job list.
// Invalid input re-renders the form with per-field messages and writes nothing.
func (h *UIHandlers) PostJobSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := parsePostJobForm(r)
	data := h.postJobData(form)

	if strings.EqualFold(r.PostFormValue("action"), postJobActionPreview) {
		preview, err := h.Jobs.Preview(form.PostJobRequest)
		if err != nil {
			h.renderError(w, r, ErrorOpts{Err: err, PageMeta: postJobMeta(), Data: data})
			return
		}
		builder := NewTemplateData(r, postJobMeta()).With("Preview", preview)
		for k, v := range data {
			builder.With(k, v)
		}
		h.renderPage(w, r, builder.Build(), http.StatusOK)
		return
	}

	if _, err := h.Jobs.Post(r.Context(), form.PostJobRequest); err != nil {
		h.renderError(w, r, ErrorOpts{
			Err:       err,
			PageMeta:  postJobMeta(),
			Data:      data,
			Fallback:  "Failed to post job. Please try again.",
			ShowToast: IsHTMX(r),
		})
		return
	}

	triggerToast(w, MsgJobPosted, ToastSuccess)
	redirect(w, r, "/jobs?posted=1")
}
