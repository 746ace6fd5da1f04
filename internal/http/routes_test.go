package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancehub/web/internal/adapters/memory"
	"github.com/freelancehub/web/internal/domain/model"
	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/observability/metrics"
	"github.com/freelancehub/web/internal/ports"
	"github.com/freelancehub/web/internal/service"
)

const testCSRFToken = "test-csrf-token"

// stubUserAPI is a func-field fake of the user API. Nil funcs fall back to a
// small in-memory account book holding janeUser.
type stubUserAPI struct {
	recorder ports.SessionRecorder

	LoginFn        func(ctx context.Context, slot string, req model.LoginRequest) (model.LoginResult, error)
	RegisterFn     func(ctx context.Context, req model.RegisterRequest) (model.MessageResponse, error)
	FetchUserFn    func(ctx context.Context, id model.UserID) (model.UserProfile, error)
	UpdateUserFn   func(ctx context.Context, id model.UserID, patch model.UserPatch) (model.UserProfile, error)
	UpdatePicFn    func(ctx context.Context, id model.UserID, upload model.PictureUpload) (model.UserProfile, error)
	DeleteUserFn   func(ctx context.Context, id model.UserID) (model.MessageResponse, error)
	lastToken      string
	deletedUserIDs []model.UserID
	profiles       map[model.UserID]model.UserProfile
}

var janeUser = model.User{ID: "1", Name: "Jane Doe", Email: "jane@example.com", Role: model.RoleFreelancer}

func newStubUserAPI() *stubUserAPI {
	return &stubUserAPI{
		profiles: map[model.UserID]model.UserProfile{
			"1": {ID: "1", Name: janeUser.Name, Email: janeUser.Email, Role: janeUser.Role, CreatedAt: "2024-01-15"},
			"2": {ID: "2", Name: "Sam Client", Email: "sam@example.com", Role: model.RoleClient},
		},
	}
}

func (s *stubUserAPI) Register(ctx context.Context, req model.RegisterRequest) (model.MessageResponse, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, req)
	}
	return model.MessageResponse{Message: "User registered successfully"}, nil
}

func (s *stubUserAPI) Login(ctx context.Context, slot string, req model.LoginRequest) (model.LoginResult, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, slot, req)
	}
	if req.Email != janeUser.Email || req.Password != "secret1" {
		return model.LoginResult{}, apperrors.RequestFailed("Invalid credentials", http.StatusUnauthorized, nil)
	}
	user := janeUser
	if err := s.recorder.Record(ctx, slot, user, "jane-token"); err != nil {
		return model.LoginResult{}, err
	}
	return model.LoginResult{Message: "Login successful", User: &user, Token: "jane-token"}, nil
}

func (s *stubUserAPI) ListUsers(context.Context) ([]model.UserProfile, error) {
	out := make([]model.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubUserAPI) FetchUser(ctx context.Context, id model.UserID) (model.UserProfile, error) {
	s.lastToken = tokenFromContext(ctx)
	if s.FetchUserFn != nil {
		return s.FetchUserFn(ctx, id)
	}
	p, ok := s.profiles[id]
	if !ok {
		return model.UserProfile{}, apperrors.RequestFailed("User not found", http.StatusNotFound, nil)
	}
	return p, nil
}

func (s *stubUserAPI) UpdateUser(ctx context.Context, id model.UserID, patch model.UserPatch) (model.UserProfile, error) {
	if s.UpdateUserFn != nil {
		return s.UpdateUserFn(ctx, id, patch)
	}
	p := s.profiles[id]
	p.Name, p.Email, p.Role = patch.Name, patch.Email, patch.Role
	s.profiles[id] = p
	return p, nil
}

func (s *stubUserAPI) UpdateProfilePicture(ctx context.Context, id model.UserID, upload model.PictureUpload) (model.UserProfile, error) {
	if s.UpdatePicFn != nil {
		return s.UpdatePicFn(ctx, id, upload)
	}
	p := s.profiles[id]
	p.ProfilePicture = "/uploads/" + upload.Filename
	s.profiles[id] = p
	return p, nil
}

func (s *stubUserAPI) DeleteUser(ctx context.Context, id model.UserID) (model.MessageResponse, error) {
	if s.DeleteUserFn != nil {
		return s.DeleteUserFn(ctx, id)
	}
	s.deletedUserIDs = append(s.deletedUserIDs, id)
	delete(s.profiles, id)
	return model.MessageResponse{Message: "User deleted"}, nil
}

type tokenKey struct{}

func bindTestToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type routerFixture struct {
	handler  http.Handler
	api      *stubUserAPI
	jobs     *memory.JobStore
	sessions *service.SessionService
	registry *prometheus.Registry
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	skipIfNoTemplates(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := service.NewSessionService(service.SessionServiceOptions{
		Store:  memory.NewSessionStore(nil),
		Logger: logger,
	})
	api := newStubUserAPI()
	api.recorder = sessions
	jobs := memory.NewSampleJobStore()
	reg := prometheus.NewRegistry()

	handler, err := NewRouter(RouterServices{
		Jobs:     service.NewJobCatalog(service.JobCatalogOptions{Source: jobs, Logger: logger}),
		Auth:     service.NewAuthService(service.AuthServiceOptions{API: api, Sessions: sessions, Logger: logger}),
		Profiles: service.NewProfileService(service.ProfileServiceOptions{API: api, Sessions: sessions, Logger: logger}),
		Sessions: sessions,
		Cookies: NewSlotCookies(SlotCookieConfig{
			Keys: [][]byte{[]byte("0123456789abcdef0123456789abcdef")},
		}),
		BindToken:   bindTestToken,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Gatherer:    reg,
		TemplateFS:  os.DirFS(TemplatePathFromTest),
		Logger:      logger,
	})
	require.NoError(t, err)
	return &routerFixture{handler: handler, api: api, jobs: jobs, sessions: sessions, registry: reg}
}

func (f *routerFixture) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil), cookies)
}

// postForm submits form with a matching CSRF cookie and field.
func (f *routerFixture) postForm(path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set(DefaultCSRFFieldName, testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	return f.do(req, cookies)
}

// postPicture uploads content as the "file" part with a matching CSRF token.
func (f *routerFixture) postPicture(t *testing.T, path, contentType string, content []byte, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField(DefaultCSRFFieldName, testCSRFToken))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="me.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	return f.do(req, cookies)
}

// login signs in as janeUser and returns the session cookie.
func (f *routerFixture) login(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := f.postForm("/login", url.Values{"email": {janeUser.Email}, "password": {"secret1"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	cookies := sessionCookies(rec)
	require.NotEmpty(t, cookies, "login should set the session cookie")
	return cookies
}

func sessionCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "fh_session" {
			out = append(out, c)
		}
	}
	return out
}

func TestRouter_ProfileRequiresSession(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get("/profile/1", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fprofile%2F1", rec.Header().Get("Location"))
}

func TestRouter_ProfileRequiresSession_HTMX(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/profile/1/edit", nil)
	req.Header.Set("Hx-Request", "true")

	rec := f.do(req, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fprofile%2F1%2Fedit", rec.Header().Get("Hx-Redirect"))
}

func TestRouter_LoginThenViewProfile(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)

	rec := f.get("/profile/1", cookies)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, containsAll(body, []string{"Jane Doe", "jane@example.com", "Edit Profile", "Logout"}), body)
	assert.Equal(t, "jane-token", f.api.lastToken, "session token should reach the user API")
}

func TestRouter_LoginRedirectsToRequestedPage(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.postForm("/login", url.Values{
		"email":    {janeUser.Email},
		"password": {"secret1"},
		"redirect": {"/profile/1/edit"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/1/edit", rec.Header().Get("Location"))
}

func TestRouter_LoginRejectsOffsiteRedirect(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.postForm("/login", url.Values{
		"email":    {janeUser.Email},
		"password": {"secret1"},
		"redirect": {"//evil.example.com/"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRouter_LoginFailureShowsBackendMessage(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.postForm("/login", url.Values{"email": {janeUser.Email}, "password": {"wrong-pass"}}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
	assert.Empty(t, sessionCookies(rec))
}

func TestRouter_LoginWithoutUserSetsNoSession(t *testing.T) {
	f := newRouterFixture(t)
	f.api.LoginFn = func(context.Context, string, model.LoginRequest) (model.LoginResult, error) {
		return model.LoginResult{Message: "Check your inbox to verify your email"}, nil
	}

	rec := f.postForm("/login", url.Values{"email": {janeUser.Email}, "password": {"secret1"}}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Check your inbox to verify your email")
	assert.Empty(t, sessionCookies(rec))
}

func TestRouter_LogoutEndsSession(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)

	rec := f.postForm("/logout", nil, cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// the old cookie no longer resolves to a session
	rec = f.get("/profile/1", cookies)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRouter_UnmatchedRedirectsToLogin(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get("/no/such/page", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_UnknownProfileIDIsNotFound(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)

	rec := f.get("/profile/abc", cookies)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ProfileLoadFailure(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)

	rec := f.get("/profile/99", cookies)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestRouter_RegisterThenLoginNotice(t *testing.T) {
	f := newRouterFixture(t)
	var got model.RegisterRequest
	f.api.RegisterFn = func(_ context.Context, req model.RegisterRequest) (model.MessageResponse, error) {
		got = req
		return model.MessageResponse{Message: "User registered"}, nil
	}

	rec := f.postForm("/register", url.Values{
		"username": {"newbie"},
		"email":    {"new@example.com"},
		"password": {"secret1"},
		"role":     {"client"},
	}, nil)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?registered=1", rec.Header().Get("Location"))
	assert.Equal(t, model.RoleClient, got.Role)

	rec = f.get("/login?registered=1", nil)
	assert.Contains(t, rec.Body.String(), MsgRegisteredSignIn)
}

func TestRouter_RegisterValidation(t *testing.T) {
	f := newRouterFixture(t)
	f.api.RegisterFn = func(context.Context, model.RegisterRequest) (model.MessageResponse, error) {
		t.Fatal("user API must not be called for invalid input")
		return model.MessageResponse{}, nil
	}

	rec := f.postForm("/register", url.Values{"username": {"x"}, "email": {"not-an-email"}, "password": {"123"}}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please fix the errors below.")
	assert.NotContains(t, body, `value="123"`)
}

func TestRouter_PostJobValidationWritesNothing(t *testing.T) {
	f := newRouterFixture(t)
	before, err := f.jobs.ListJobs(context.Background())
	require.NoError(t, err)

	rec := f.postForm("/post-job", validJobForm(func(v url.Values) { v.Set("title", "") }), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title is required")

	after, err := f.jobs.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestRouter_PostJobPreviewWritesNothing(t *testing.T) {
	f := newRouterFixture(t)
	before, err := f.jobs.ListJobs(context.Background())
	require.NoError(t, err)

	rec := f.postForm("/post-job", validJobForm(func(v url.Values) { v.Set("action", "preview") }), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, containsAll(rec.Body.String(), []string{"Preview", "Go Backend Engineer", "$900"}))

	after, err := f.jobs.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestRouter_PostJobThenListed(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.postForm("/post-job", validJobForm(nil), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/jobs?posted=1", rec.Header().Get("Location"))

	rec = f.get("/jobs?posted=1&q=backend", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, containsAll(rec.Body.String(), []string{MsgJobPosted, "Go Backend Engineer"}))
}

func TestRouter_JobSearchFragment(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/jobs?q=python&category=all", nil)
	req.Header.Set("Hx-Request", "true")
	req.Header.Set("Hx-Target", "job-list")

	rec := f.do(req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="job-list"`)
	assert.Contains(t, body, "Python Developer for Data Analysis")
	assert.NotContains(t, body, "iOS App Developer")
	assert.NotContains(t, body, "<html")
	assert.Equal(t, "/jobs?q=python", rec.Header().Get("Hx-Push-Url"))
}

func TestRouter_JobSearchKeepsWhitespace(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get("/jobs?q=react%20", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Web Developer Needed")
	assert.Contains(t, rec.Body.String(), "No jobs match your search.")
}

func TestRouter_JobCategoryFilter(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get("/jobs?category=Design", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mobile App Design")
	assert.NotContains(t, rec.Body.String(), "Content Writer for Tech Blog")
}

func TestRouter_HomeShowsFeaturedJobs(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get("/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, containsAll(rec.Body.String(), []string{
		"Find Your Next Freelance Project", "Featured Jobs", "Web Developer Needed", "Sign Up",
	}))
}

func TestRouter_StaticProfileSample(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get("/profile", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, containsAll(rec.Body.String(), []string{"John Doe", "john.doe@example.com", "React"}))
}

func TestRouter_PartialPageForHTMXNavigation(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Hx-Request", "true")

	rec := f.do(req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Sign In | FreelanceHub</title>")
	assert.NotContains(t, rec.Body.String(), "<html")
}

func TestRouter_RejectsPostWithoutCSRF(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/post-job", strings.NewReader(validJobForm(nil).Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := f.do(req, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_EditAndSaveProfile(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)

	rec := f.get("/profile/1/edit", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-state="editing"`)

	rec = f.postForm("/profile/1", url.Values{"name": {"Jane Q. Doe"}, "email": {"jane@example.com"}, "role": {"CLIENT"}}, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-state="viewing"`)
	assert.Contains(t, rec.Body.String(), "Jane Q. Doe")

	// the navbar picks up the new name from the refreshed session
	rec = f.get("/", cookies)
	assert.Contains(t, rec.Body.String(), "Jane Q. Doe")
}

func TestRouter_SaveProfileValidationKeepsDraft(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)
	f.api.UpdateUserFn = func(context.Context, model.UserID, model.UserPatch) (model.UserProfile, error) {
		t.Fatal("user API must not be called for invalid input")
		return model.UserProfile{}, nil
	}

	rec := f.postForm("/profile/1", url.Values{"name": {"Jane"}, "email": {"broken"}}, cookies)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-state="editing"`)
	assert.Contains(t, body, `value="broken"`)
}

func TestRouter_CannotEditAnotherProfile(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)

	rec := f.get("/profile/2/edit", cookies)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotContains(t, rec.Body.String(), `data-state="editing"`)
}

func TestRouter_DeleteRequiresConfirmation(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)

	rec := f.postForm("/profile/1/delete", nil, cookies)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, f.api.deletedUserIDs)
}

func TestRouter_DeleteOwnAccount(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)

	rec := f.get("/profile/1/delete", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), service.MsgAccountDeleteConfirm)

	rec = f.postForm("/profile/1/delete", url.Values{"confirm": {"yes"}}, cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, []model.UserID{"1"}, f.api.deletedUserIDs)

	cleared := sessionCookies(rec)
	require.Len(t, cleared, 1)
	assert.Negative(t, cleared[0].MaxAge)

	rec = f.get("/profile/1", cookies)
	assert.Equal(t, http.StatusSeeOther, rec.Code, "session should be gone after deletion")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	f := newRouterFixture(t)
	f.get("/jobs", nil)

	rec := f.get("/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.get("/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="GET /jobs"`)
}

func validJobForm(mutate func(url.Values)) url.Values {
	v := url.Values{
		"title":           {"Go Backend Engineer"},
		"description":     {"Build a backend service in Go."},
		"category":        {"Web Development"},
		"jobType":         {"Fixed Price"},
		"experienceLevel": {"Expert"},
		"budget":          {"900 - 1200"},
		"currency":        {"USD"},
		"deadline":        {"2030-01-31"},
		"duration":        {"1 month"},
		"skills":          {"Go, PostgreSQL"},
	}
	if mutate != nil {
		mutate(v)
	}
	return v
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n")

func TestRouter_UploadProfilePicture(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)
	var got model.PictureUpload
	f.api.UpdatePicFn = func(_ context.Context, id model.UserID, upload model.PictureUpload) (model.UserProfile, error) {
		got = upload
		p := f.api.profiles[id]
		p.ProfilePicture = "/uploads/me.png"
		f.api.profiles[id] = p
		return p, nil
	}

	rec := f.postPicture(t, "/profile/1/picture", "image/png", pngBytes, cookies)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "me.png", got.Filename)
	assert.Equal(t, "image/png", got.ContentType)
	body := rec.Body.String()
	assert.Contains(t, body, `src="/uploads/me.png"`)
	assert.Contains(t, body, service.MsgPictureUpdated)
	assert.Equal(t, "/profile/1", rec.Header().Get("HX-Push-Url"))
}

func TestRouter_UploadProfilePictureRejected(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		content     []byte
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "larger than the request limit",
			path:        "/profile/1/picture",
			contentType: "image/png",
			content:     bytes.Repeat([]byte{0xAB}, MaxPictureBytes+2<<20),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Profile picture must be 5 MB or smaller",
		},
		{
			name:        "file over 5 MB",
			path:        "/profile/1/picture",
			contentType: "image/png",
			content:     bytes.Repeat([]byte{0xAB}, MaxPictureBytes+1024),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Profile picture must be 5 MB or smaller",
		},
		{
			name:        "not an image",
			path:        "/profile/1/picture",
			contentType: "application/pdf",
			content:     []byte("%PDF-1.4"),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Profile picture must be an image",
		},
		{
			name:        "another user's profile",
			path:        "/profile/2/picture",
			contentType: "image/png",
			content:     pngBytes,
			wantStatus:  http.StatusConflict,
			wantMessage: "cannot upload a picture for another user&#39;s profile",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			cookies := f.login(t)
			f.api.UpdatePicFn = func(context.Context, model.UserID, model.PictureUpload) (model.UserProfile, error) {
				t.Fatal("user API must not receive a rejected upload")
				return model.UserProfile{}, nil
			}

			rec := f.postPicture(t, tt.path, tt.contentType, tt.content, cookies)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMessage)
		})
	}
}

func TestRouter_UploadProfilePictureBackendFailure(t *testing.T) {
	f := newRouterFixture(t)
	cookies := f.login(t)
	f.api.UpdatePicFn = func(context.Context, model.UserID, model.PictureUpload) (model.UserProfile, error) {
		return model.UserProfile{}, apperrors.RequestFailed("", http.StatusInternalServerError, fmt.Errorf("boom"))
	}

	rec := f.postPicture(t, "/profile/1/picture", "image/png", pngBytes, cookies)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), service.MsgPictureUpdateFailed)
}
