package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
	"github.com/freelancehub/web/internal/domain/model"
	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/ports"
)

// Profile flow messages.
const (
	MsgProfileLoadFailed    = "Failed to load user data"
	MsgProfileUpdated       = "Profile updated successfully"
	MsgProfileUpdateFailed  = "Failed to update profile"
	MsgPictureUpdated       = "Profile picture updated successfully"
	MsgPictureUpdateFailed  = "Failed to update profile picture"
	MsgAccountDeleteFailed  = "Failed to delete account"
	MsgAccountDeleteConfirm = "Are you sure you want to delete this account? This action cannot be undone."
)

// ProfileState is a step of the profile view.
type ProfileState int

const (
	ProfileLoading ProfileState = iota
	ProfileViewing
	ProfileEditing
	ProfileErrored
	ProfileDeleted
)

var profileStateNames = [...]string{"loading", "viewing", "editing", "errored", "deleted"}

func (s ProfileState) String() string {
	if int(s) < len(profileStateNames) {
		return profileStateNames[s]
	}
	return fmt.Sprintf("ProfileState(%d)", int(s))
}

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	API      ports.UserAPI
	Sessions *SessionService
	Logger   *slog.Logger
}

// ProfileService creates per-request profile flows.
type ProfileService struct {
	api      ports.UserAPI
	sessions *SessionService
	logger   *slog.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	if opts.API == nil {
		panic("UserAPI is required")
	}
	if opts.Sessions == nil {
		panic("SessionService is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{api: opts.API, sessions: opts.Sessions, logger: logger.With("component", "profile")}
}

// NewFlow starts a flow in Loading for profile id as seen by viewer.
func (s *ProfileService) NewFlow(viewer domainauth.Session, id model.UserID) *ProfileFlow {
	return &ProfileFlow{svc: s, viewer: viewer, id: id, state: ProfileLoading}
}

// ProfileFlow is the view/edit/delete state machine for one profile.
// A flow is not safe for concurrent use; build one per request.
type ProfileFlow struct {
	svc    *ProfileService
	viewer domainauth.Session
	id     model.UserID

	state   ProfileState
	profile model.UserProfile
	draft   model.UserPatch
	errMsg  string
	notice  string
}

func (f *ProfileFlow) State() ProfileState { return f.state }
func (f *ProfileFlow) Profile() model.UserProfile { return f.profile }
func (f *ProfileFlow) Draft() model.UserPatch { return f.draft }
func (f *ProfileFlow) ID() model.UserID { return f.id }

// ErrorMessage is the message of the last failed step, if any.
func (f *ProfileFlow) ErrorMessage() string { return f.errMsg }

// Notice is the message of the last successful mutation, if any.
func (f *ProfileFlow) Notice() string { return f.notice }

// IsOwner reports whether the signed-in user is viewing their own profile.
// Edit, upload and delete are offered only to the owner.
func (f *ProfileFlow) IsOwner() bool { return f.viewer.Owns(f.id) }

// Load fetches the profile: Loading -> Viewing, or Errored on failure.
func (f *ProfileFlow) Load(ctx context.Context) error {
	if f.state != ProfileLoading {
		return apperrors.InvalidTransition(fmt.Sprintf("cannot load profile while %s", f.state))
	}
	return f.fetch(ctx)
}

func (f *ProfileFlow) fetch(ctx context.Context) error {
	profile, err := f.svc.api.FetchUser(ctx, f.id)
	if err != nil {
		f.state = ProfileErrored
		f.errMsg = apperrors.UserMessage(err, MsgProfileLoadFailed)
		return fmt.Errorf("fetch profile: %w", err)
	}
	f.profile = profile
	f.state = ProfileViewing
	return nil
}

// BeginEdit moves Viewing -> Editing with a draft of the current fields.
func (f *ProfileFlow) BeginEdit() error {
	if err := f.requireOwner("edit"); err != nil {
		return err
	}
	if f.state != ProfileViewing {
		return apperrors.InvalidTransition(fmt.Sprintf("cannot edit profile while %s", f.state))
	}
	f.draft = f.profile.Patch()
	f.errMsg = ""
	f.notice = ""
	f.state = ProfileEditing
	return nil
}

// Cancel discards the draft: Editing -> Viewing.
func (f *ProfileFlow) Cancel() error {
	if f.state != ProfileEditing {
		return apperrors.InvalidTransition(fmt.Sprintf("cannot cancel while %s", f.state))
	}
	f.draft = model.UserPatch{}
	f.errMsg = ""
	f.state = ProfileViewing
	return nil
}

// Save submits patch. On success the profile is re-fetched and the flow returns
// to Viewing; on failure it stays in Editing with the submitted draft.
func (f *ProfileFlow) Save(ctx context.Context, patch model.UserPatch) error {
	if err := f.requireOwner("save"); err != nil {
		return err
	}
	if f.state != ProfileEditing {
		return apperrors.InvalidTransition(fmt.Sprintf("cannot save profile while %s", f.state))
	}

	patch.Normalize()
	f.draft = patch
	if err := patch.Validate(); err != nil {
		f.errMsg = apperrors.UserMessage(err, MsgProfileUpdateFailed)
		return err
	}

	if _, err := f.svc.api.UpdateUser(ctx, f.id, patch); err != nil {
		f.errMsg = apperrors.UserMessage(err, MsgProfileUpdateFailed)
		return fmt.Errorf("update profile: %w", err)
	}

	if err := f.fetch(ctx); err != nil {
		return err
	}
	f.draft = model.UserPatch{}
	f.errMsg = ""
	f.notice = MsgProfileUpdated
	f.refreshViewer(ctx)
	return nil
}

// UploadPicture replaces the profile picture and re-fetches the profile.
func (f *ProfileFlow) UploadPicture(ctx context.Context, upload model.PictureUpload) error {
	if err := f.requireOwner("upload a picture for"); err != nil {
		return err
	}
	if f.state != ProfileViewing && f.state != ProfileEditing {
		return apperrors.InvalidTransition(fmt.Sprintf("cannot upload picture while %s", f.state))
	}

	if _, err := f.svc.api.UpdateProfilePicture(ctx, f.id, upload); err != nil {
		f.errMsg = apperrors.UserMessage(err, MsgPictureUpdateFailed)
		return fmt.Errorf("update profile picture: %w", err)
	}
	if err := f.fetch(ctx); err != nil {
		return err
	}
	f.errMsg = ""
	f.notice = MsgPictureUpdated
	return nil
}

// Delete removes the account once confirmed. Deleting one's own account also
// clears slot. An unconfirmed delete never reaches the API.
func (f *ProfileFlow) Delete(ctx context.Context, slot string, confirmed bool) error {
	if err := f.requireOwner("delete"); err != nil {
		return err
	}
	if f.state != ProfileViewing {
		return apperrors.InvalidTransition(fmt.Sprintf("cannot delete profile while %s", f.state))
	}
	if !confirmed {
		return apperrors.InvalidTransition("account deletion was not confirmed")
	}

	if _, err := f.svc.api.DeleteUser(ctx, f.id); err != nil {
		f.errMsg = apperrors.UserMessage(err, MsgAccountDeleteFailed)
		return fmt.Errorf("delete account: %w", err)
	}

	if err := f.svc.sessions.Clear(ctx, slot); err != nil {
		f.svc.logger.WarnContext(ctx, "failed to clear session after account deletion", slog.Any("error", err))
	}
	f.viewer = domainauth.Session{}
	f.svc.logger.InfoContext(ctx, "account deleted", slog.String("user_id", f.id.String()))
	f.state = ProfileDeleted
	return nil
}

func (f *ProfileFlow) requireOwner(action string) error {
	if !f.IsOwner() {
		return apperrors.InvalidTransition(fmt.Sprintf("cannot %s another user's profile", action))
	}
	return nil
}

// refreshViewer copies the saved name and email into the owner's session so
// navigation reflects the change. Failures only cost a stale display name.
func (f *ProfileFlow) refreshViewer(ctx context.Context) {
	sess := f.viewer
	sess.User.Name = f.profile.Name
	sess.User.Email = f.profile.Email
	if f.profile.Role != "" {
		sess.User.Role = f.profile.Role
	}
	if sess.User == f.viewer.User {
		return
	}
	if err := f.svc.sessions.Save(ctx, sess.ID, sess); err != nil {
		f.svc.logger.WarnContext(ctx, "failed to refresh session user", slog.Any("error", err))
		return
	}
	f.viewer = sess
}
