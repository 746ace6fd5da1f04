package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/freelancehub/web/internal/domain/model"
	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/service"
)

// MsgAccountDeleted is the toast shown after an account is removed.
const MsgAccountDeleted = "Account deleted"

// staticProfile is the profile card on /profile.
type staticProfile struct {
	UserID   string
	Name     string
	Email    string
	Role     string
	Bio      string
	Location string
	Skills   []string
}

// sampleProfile is shown on /profile to visitors who are not signed in.
func sampleProfile() staticProfile {
	return staticProfile{
		Name:     "John Doe",
		Email:    "john.doe@example.com",
		Bio:      "Experienced web developer with 5+ years of experience",
		Location: "New York, USA",
		Skills:   []string{"React", "Node.js", "MongoDB"},
	}
}

// Profile renders the static profile page: the signed-in user's details, or the sample profile.
func (h *UIHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	profile := sampleProfile()
	if sess, ok := GetUserSessionFromContext(r.Context()); ok {
		profile = staticProfile{
			UserID: sess.User.ID.String(),
			Name:   sess.DisplayName(),
			Email:  sess.User.Email,
			Role:   sess.User.Role,
		}
	}
	data := NewTemplateData(r, PageMeta{Title: "Profile", PageTitle: "Profile", CurrentPage: PageProfile}).
		With("Profile", profile).
		Build()
	h.renderPage(w, r, data, http.StatusOK)
}

// loadProfileFlow parses {id} and loads the profile for the signed-in viewer.
// When the id is invalid it writes a 404 and returns a nil flow. A failed load
// returns the flow in Errored along with the error.
func (h *UIHandlers) loadProfileFlow(w http.ResponseWriter, r *http.Request) (*service.ProfileFlow, error) {
	id, err := model.ParseUserID(r.PathValue("id"))
	if err != nil {
		h.NotFound(w, r)
		return nil, nil
	}
	viewer, _ := GetUserSessionFromContext(r.Context())
	flow := h.Profiles.NewFlow(viewer, id)
	if loadErr := flow.Load(r.Context()); loadErr != nil {
		h.logger().WarnContext(r.Context(), "failed to load profile",
			slog.String("user_id", id.String()),
			slog.Any("error", loadErr))
		return flow, loadErr
	}
	return flow, nil
}

func profileMeta(flow *service.ProfileFlow, page string) PageMeta {
	title := "Profile"
	if name := flow.Profile().Name; name != "" {
		title = name
	}
	if page == PageDeleteUser {
		return PageMeta{Title: "Delete Account", PageTitle: "Delete Account", CurrentPage: page}
	}
	return PageMeta{Title: title, PageTitle: "Profile", CurrentPage: page}
}

func profileVars(flow *service.ProfileFlow) map[string]any {
	return map[string]any{
		"ProfileID":     flow.ID().String(),
		"Profile":       flow.Profile(),
		"Draft":         flow.Draft(),
		"State":         flow.State().String(),
		"IsOwner":       flow.IsOwner(),
		"Roles":         model.Roles(),
		"ConfirmDelete": service.MsgAccountDeleteConfirm,
	}
}

// renderProfile renders the flow in its current state, with stepErr as an inline alert.
func (h *UIHandlers) renderProfile(w http.ResponseWriter, r *http.Request, flow *service.ProfileFlow, page string, stepErr error) {
	if stepErr != nil {
		fallback := flow.ErrorMessage()
		if apperrors.IsInvalidTransition(stepErr) {
			fallback = ""
		}
		h.renderError(w, r, ErrorOpts{
			Err:       stepErr,
			PageMeta:  profileMeta(flow, page),
			Data:      profileVars(flow),
			Fallback:  fallback,
			ShowToast: IsHTMX(r),
		})
		return
	}

	data := NewTemplateData(r, profileMeta(flow, page)).
		WithAll(profileVars(flow)).
		WithNotice(flow.Notice()).
		Build()
	h.renderPage(w, r, data, http.StatusOK)
}

// UserProfile renders a profile in the viewing state.
func (h *UIHandlers) UserProfile(w http.ResponseWriter, r *http.Request) {
	flow, err := h.loadProfileFlow(w, r)
	if flow == nil {
		return
	}
	h.renderProfile(w, r, flow, PageUserProfile, err)
}

// UserProfileEdit renders the edit form for the owner's profile.
func (h *UIHandlers) UserProfileEdit(w http.ResponseWriter, r *http.Request) {
	flow, err := h.loadProfileFlow(w, r)
	if flow == nil {
		return
	}
	if err == nil {
		err = flow.BeginEdit()
	}
	h.renderProfile(w, r, flow, PageUserProfile, err)
}

// UserProfileSave submits the edit form. Invalid input or an API failure
// keeps the form open with the submitted values.
func (h *UIHandlers) UserProfileSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	flow, err := h.loadProfileFlow(w, r)
	if flow == nil {
		return
	}
	if err == nil {
		err = flow.BeginEdit()
	}
	if err != nil {
		h.renderProfile(w, r, flow, PageUserProfile, err)
		return
	}

	patch := model.UserPatch{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Role:  r.PostFormValue("role"),
	}
	if err := flow.Save(r.Context(), patch); err != nil {
		h.logger().InfoContext(r.Context(), "profile save failed",
			slog.String("user_id", flow.ID().String()),
			slog.Any("error", err))
		h.renderProfile(w, r, flow, PageUserProfile, err)
		return
	}

	HTMX(w).PushURL("/profile/" + flow.ID().String())
	triggerToast(w, flow.Notice(), ToastSuccess)
	h.renderProfile(w, r, flow, PageUserProfile, nil)
}

// UserProfilePicture accepts a multipart "file" upload of at most MaxPictureBytes.
func (h *UIHandlers) UserProfilePicture(w http.ResponseWriter, r *http.Request) {
	upload, closeFile, uploadErr := readPictureUpload(w, r)
	if closeFile != nil {
		defer closeFile()
	}
	flow, err := h.loadProfileFlow(w, r)
	if flow == nil {
		return
	}
	if err == nil {
		err = uploadErr
	}
	if err != nil {
		h.renderProfile(w, r, flow, PageUserProfile, err)
		return
	}

	if err := flow.UploadPicture(r.Context(), upload); err != nil {
		h.logger().InfoContext(r.Context(), "profile picture upload failed",
			slog.String("user_id", flow.ID().String()),
			slog.Any("error", err))
		h.renderProfile(w, r, flow, PageUserProfile, err)
		return
	}
	HTMX(w).PushURL("/profile/" + flow.ID().String())
	triggerToast(w, flow.Notice(), ToastSuccess)
	h.renderProfile(w, r, flow, PageUserProfile, nil)
}

func pictureTooLarge() error {
	return apperrors.ValidationField("file", "Profile picture must be 5 MB or smaller")
}

// readPictureUpload extracts the "file" part. The returned func closes it.
func readPictureUpload(w http.ResponseWriter, r *http.Request) (model.PictureUpload, func(), error) {
	if UploadTooLarge(r) {
		return model.PictureUpload{}, nil, pictureTooLarge()
	}
	if r.MultipartForm == nil {
		r.Body = http.MaxBytesReader(w, r.Body, MaxPictureBytes+1<<20)
		if err := r.ParseMultipartForm(MaxPictureBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return model.PictureUpload{}, nil, pictureTooLarge()
			}
			return model.PictureUpload{}, nil, apperrors.ValidationField("file", "Choose an image to upload")
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return model.PictureUpload{}, nil, apperrors.ValidationField("file", "Choose an image to upload")
	}
	closeFile := func() { _ = file.Close() }

	if header.Size > MaxPictureBytes {
		return model.PictureUpload{}, closeFile, pictureTooLarge()
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return model.PictureUpload{}, closeFile, apperrors.ValidationField("file", "Profile picture must be an image")
	}
	return model.PictureUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Content:     file,
	}, closeFile, nil
}

// UserDeleteConfirm renders the delete confirmation page.
func (h *UIHandlers) UserDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	flow, err := h.loadProfileFlow(w, r)
	if flow == nil {
		return
	}
	if err == nil && !flow.IsOwner() {
		err = apperrors.InvalidTransition("You can only delete your own account.")
	}
	h.renderProfile(w, r, flow, PageDeleteUser, err)
}

// UserDelete deletes the account when the form carries confirm=yes. Deleting
// one's own account also signs the browser out.
func (h *UIHandlers) UserDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	flow, err := h.loadProfileFlow(w, r)
	if flow == nil {
		return
	}
	if err != nil {
		h.renderProfile(w, r, flow, PageDeleteUser, err)
		return
	}

	viewer, _ := GetUserSessionFromContext(r.Context())
	ownAccount := viewer.Owns(flow.ID())
	confirmed := r.PostFormValue("confirm") == "yes"
	if err := flow.Delete(r.Context(), GetSlotFromContext(r.Context()), confirmed); err != nil {
		h.logger().InfoContext(r.Context(), "account deletion failed",
			slog.String("user_id", flow.ID().String()),
			slog.Any("error", err))
		h.renderProfile(w, r, flow, PageDeleteUser, err)
		return
	}

	if ownAccount {
		h.clearSlotCookie(w, r)
	}
	triggerToast(w, MsgAccountDeleted, ToastSuccess)
	redirect(w, r, "/")
}
