package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
	"github.com/freelancehub/web/internal/domain/model"
	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/mocks"
)

var aliceProfile = model.UserProfile{
	ID:        "1",
	Name:      "Alice",
	Email:     "alice@example.com",
	Role:      model.RoleFreelancer,
	CreatedAt: "2024-01-01T00:00:00Z",
}

type profileFixture struct {
	svc      *ProfileService
	api      *mocks.MockUserAPI
	sessions *SessionService
	owner    domainauth.Session
}

func newProfileFixture(t *testing.T) profileFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockUserAPI(ctrl)
	sessions, _ := newTestSessions(t, time.Hour)

	require.NoError(t, sessions.Save(context.Background(), "slot-1", domainauth.Session{User: alice}))
	owner, ok := sessions.Current(context.Background(), "slot-1")
	require.True(t, ok)

	return profileFixture{
		svc:      NewProfileService(ProfileServiceOptions{API: api, Sessions: sessions}),
		api:      api,
		sessions: sessions,
		owner:    owner,
	}
}

func (f profileFixture) loaded(t *testing.T, viewer domainauth.Session) *ProfileFlow {
	t.Helper()
	f.api.EXPECT().FetchUser(gomock.Any(), model.UserID("1")).Return(aliceProfile, nil)
	flow := f.svc.NewFlow(viewer, "1")
	require.NoError(t, flow.Load(context.Background()))
	return flow
}

func TestProfileFlow_LoadViewing(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.svc.NewFlow(f.owner, "1")
	assert.Equal(t, ProfileLoading, flow.State())

	f.api.EXPECT().FetchUser(gomock.Any(), model.UserID("1")).Return(aliceProfile, nil)
	require.NoError(t, flow.Load(context.Background()))

	assert.Equal(t, ProfileViewing, flow.State())
	assert.Equal(t, aliceProfile, flow.Profile())
	assert.True(t, flow.IsOwner())

	err := flow.Load(context.Background())
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestProfileFlow_LoadErrored(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "server message", err: apperrors.RequestFailed("User not found", 404, nil), wantMsg: "User not found"},
		{name: "fallback", err: apperrors.RequestFailed("", 500, nil), wantMsg: MsgProfileLoadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProfileFixture(t)
			f.api.EXPECT().FetchUser(gomock.Any(), gomock.Any()).Return(model.UserProfile{}, tt.err)

			flow := f.svc.NewFlow(f.owner, "1")
			require.Error(t, flow.Load(context.Background()))
			assert.Equal(t, ProfileErrored, flow.State())
			assert.Equal(t, tt.wantMsg, flow.ErrorMessage())
		})
	}
}

func TestProfileFlow_EditCancel(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.loaded(t, f.owner)

	require.NoError(t, flow.BeginEdit())
	assert.Equal(t, ProfileEditing, flow.State())
	assert.Equal(t, aliceProfile.Patch(), flow.Draft())

	require.NoError(t, flow.Cancel())
	assert.Equal(t, ProfileViewing, flow.State())
	assert.Equal(t, model.UserPatch{}, flow.Draft())
	assert.Equal(t, aliceProfile, flow.Profile(), "cancel must not change the profile")

	assert.True(t, apperrors.IsInvalidTransition(flow.Cancel()))
}

func TestProfileFlow_SaveRefetchesAndRefreshesSession(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.loaded(t, f.owner)
	require.NoError(t, flow.BeginEdit())

	patch := model.UserPatch{Name: "Alice Smith", Email: "alice@example.com", Role: model.RoleFreelancer}
	updated := aliceProfile
	updated.Name = "Alice Smith"

	gomock.InOrder(
		f.api.EXPECT().UpdateUser(gomock.Any(), model.UserID("1"), patch).Return(model.UserProfile{}, nil),
		f.api.EXPECT().FetchUser(gomock.Any(), model.UserID("1")).Return(updated, nil),
	)

	require.NoError(t, flow.Save(context.Background(), model.UserPatch{Name: " Alice Smith ", Email: "alice@example.com", Role: model.RoleFreelancer}))
	assert.Equal(t, ProfileViewing, flow.State())
	assert.Equal(t, "Alice Smith", flow.Profile().Name)
	assert.Equal(t, MsgProfileUpdated, flow.Notice())

	sess, ok := f.sessions.Current(context.Background(), "slot-1")
	require.True(t, ok)
	assert.Equal(t, "Alice Smith", sess.User.Name)
}

func TestProfileFlow_SaveFailureStaysEditing(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.loaded(t, f.owner)
	require.NoError(t, flow.BeginEdit())

	f.api.EXPECT().UpdateUser(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.UserProfile{}, apperrors.RequestFailed("", 500, nil))

	patch := model.UserPatch{Name: "New", Email: "new@example.com"}
	require.Error(t, flow.Save(context.Background(), patch))
	assert.Equal(t, ProfileEditing, flow.State())
	assert.Equal(t, MsgProfileUpdateFailed, flow.ErrorMessage())
	assert.Equal(t, patch, flow.Draft())
}

func TestProfileFlow_SaveValidationNeverCallsAPI(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.loaded(t, f.owner)
	require.NoError(t, flow.BeginEdit())

	err := flow.Save(context.Background(), model.UserPatch{Name: "", Email: "bad"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, ProfileEditing, flow.State())
}

func TestProfileFlow_SaveRequiresEditing(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.loaded(t, f.owner)

	err := flow.Save(context.Background(), model.UserPatch{Name: "x", Email: "x@example.com"})
	assert.True(t, apperrors.IsInvalidTransition(err))
	assert.Equal(t, ProfileViewing, flow.State())
}

func TestProfileFlow_NonOwnerCannotMutate(t *testing.T) {
	f := newProfileFixture(t)
	stranger := domainauth.Session{ID: "slot-2", User: model.User{ID: "2", Name: "Bob"}}
	flow := f.loaded(t, stranger)
	ctx := context.Background()

	assert.False(t, flow.IsOwner())
	assert.True(t, apperrors.IsInvalidTransition(flow.BeginEdit()))
	assert.True(t, apperrors.IsInvalidTransition(flow.Delete(ctx, "slot-2", true)))
	assert.True(t, apperrors.IsInvalidTransition(flow.UploadPicture(ctx, model.PictureUpload{Content: strings.NewReader("x")})))
	assert.Equal(t, ProfileViewing, flow.State())
}

func TestProfileFlow_DeleteRequiresConfirmation(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.loaded(t, f.owner)

	err := flow.Delete(context.Background(), "slot-1", false)
	assert.True(t, apperrors.IsInvalidTransition(err))
	assert.Equal(t, ProfileViewing, flow.State())

	_, ok := f.sessions.Current(context.Background(), "slot-1")
	assert.True(t, ok)
}

func TestProfileFlow_DeleteOwnAccountClearsSession(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.loaded(t, f.owner)

	f.api.EXPECT().DeleteUser(gomock.Any(), model.UserID("1")).Return(model.MessageResponse{Message: "deleted"}, nil)

	require.NoError(t, flow.Delete(context.Background(), "slot-1", true))
	assert.Equal(t, ProfileDeleted, flow.State())

	_, ok := f.sessions.Current(context.Background(), "slot-1")
	assert.False(t, ok)
}

func TestProfileFlow_DeleteFailure(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.loaded(t, f.owner)

	f.api.EXPECT().DeleteUser(gomock.Any(), gomock.Any()).Return(model.MessageResponse{}, apperrors.RequestFailed("", 500, nil))

	require.Error(t, flow.Delete(context.Background(), "slot-1", true))
	assert.Equal(t, ProfileViewing, flow.State())
	assert.Equal(t, MsgAccountDeleteFailed, flow.ErrorMessage())

	_, ok := f.sessions.Current(context.Background(), "slot-1")
	assert.True(t, ok)
}

func TestProfileFlow_UploadPicture(t *testing.T) {
	f := newProfileFixture(t)
	flow := f.loaded(t, f.owner)

	withPicture := aliceProfile
	withPicture.ProfilePicture = "/uploads/1.png"

	gomock.InOrder(
		f.api.EXPECT().UpdateProfilePicture(gomock.Any(), model.UserID("1"), gomock.Any()).Return(model.UserProfile{}, nil),
		f.api.EXPECT().FetchUser(gomock.Any(), model.UserID("1")).Return(withPicture, nil),
	)

	require.NoError(t, flow.UploadPicture(context.Background(), model.PictureUpload{
		Filename: "me.png", ContentType: "image/png", Content: strings.NewReader("png"),
	}))
	assert.Equal(t, ProfileViewing, flow.State())
	assert.Equal(t, "/uploads/1.png", flow.Profile().ProfilePicture)
	assert.Equal(t, MsgPictureUpdated, flow.Notice())
}

func TestProfileState_String(t *testing.T) {
	assert.Equal(t, "editing", ProfileEditing.String())
	assert.Equal(t, "ProfileState(42)", ProfileState(42).String())
}
