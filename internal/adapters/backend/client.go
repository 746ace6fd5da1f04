// Package backend is the HTTP client for the external user REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	"github.com/freelancehub/web/internal/domain/model"
	apperrors "github.com/freelancehub/web/internal/errors"
	obserrors "github.com/freelancehub/web/internal/observability/errors"
	"github.com/freelancehub/web/internal/observability/metrics"
	"github.com/freelancehub/web/internal/ports"
)

var _ ports.UserAPI = (*Client)(nil)

// Operation names used for metrics and logs.
const (
	opRegister      = "register"
	opLogin         = "login"
	opListUsers     = "list_users"
	opFetchUser     = "fetch_user"
	opUpdateUser    = "update_user"
	opUpdatePicture = "update_profile_picture"
	opDeleteUser    = "delete_user"
)

// Fallback messages used when the API does not supply one.
const (
	MsgRegistrationFailed = "Registration failed"
	MsgLoginFailed        = "Login failed"
	MsgFetchUsersFailed   = "Failed to fetch users"
	MsgFetchUserFailed    = "Failed to fetch user"
	MsgUpdateUserFailed   = "Failed to update user"
	MsgUpdatePictureFail  = "Failed to update profile picture"
	MsgDeleteUserFailed   = "Failed to delete user"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Config captures the client's dependencies. Callers should pass a validated config.
type Config struct {
	// APIURL is the API root; requests go to {APIURL}/users/...
	APIURL  string
	Timeout time.Duration
	Client  *http.Client

	// Sessions receives the identity returned by a successful login.
	Sessions ports.SessionRecorder
	Metrics  *metrics.BackendMetrics
	Logger   *slog.Logger

	ErrorMessageExpr string
	LoginUserExpr    string
	LoginTokenExpr   string
}

// Client calls the user API. It never retries.
type Client struct {
	usersURL string
	client   *http.Client
	sessions ports.SessionRecorder
	metrics  *metrics.BackendMetrics
	logger   *slog.Logger

	errorExpr string
	userExpr  string
	tokenExpr string
}

// NewClient builds a user API client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if base == "" {
		return nil, errors.New("backend api url is required")
	}
	usersURL, err := url.JoinPath(base, "users")
	if err != nil {
		return nil, fmt.Errorf("build users url: %w", err)
	}

	exprs := []*string{&cfg.ErrorMessageExpr, &cfg.LoginUserExpr, &cfg.LoginTokenExpr}
	defaults := []string{"message", "user", "token"}
	for i, expr := range exprs {
		*expr = strings.TrimSpace(*expr)
		if *expr == "" {
			*expr = defaults[i]
		}
		if _, compileErr := jmespath.Compile(*expr); compileErr != nil {
			return nil, fmt.Errorf("invalid jmespath expression %q: %w", *expr, compileErr)
		}
	}

	hc := cfg.Client
	if hc == nil {
		// Zero timeout leaves cancellation to the request context.
		hc = &http.Client{Timeout: max(cfg.Timeout, 0)}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		usersURL:  usersURL,
		client:    hc,
		sessions:  cfg.Sessions,
		metrics:   cfg.Metrics,
		logger:    logger.With("component", "backend"),
		errorExpr: cfg.ErrorMessageExpr,
		userExpr:  cfg.LoginUserExpr,
		tokenExpr: cfg.LoginTokenExpr,
	}, nil
}

type tokenKey struct{}

// WithToken returns a context whose backend calls carry token as a Bearer credential.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the Bearer token set by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey{}).(string)
	return tok, ok && tok != ""
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.MessageResponse, error) {
	var out model.MessageResponse
	body, err := c.doJSON(ctx, call{op: opRegister, method: http.MethodPost, path: "register", fallback: MsgRegistrationFailed}, req)
	if err != nil {
		return out, err
	}
	if err := c.decode(opRegister, body, &out, MsgRegistrationFailed); err != nil {
		return out, err
	}
	out.Raw = body
	return out, nil
}

// Login authenticates and records the returned user into slot.
// A response without a user leaves the session untouched.
func (c *Client) Login(ctx context.Context, slot string, req model.LoginRequest) (model.LoginResult, error) {
	body, err := c.doJSON(ctx, call{op: opLogin, method: http.MethodPost, path: "login", fallback: MsgLoginFailed}, req)
	if err != nil {
		return model.LoginResult{}, err
	}

	var doc any
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &doc); err != nil {
			return model.LoginResult{}, c.decodeFailed(opLogin, err, MsgLoginFailed)
		}
	}

	result := model.LoginResult{Raw: body}
	result.Message = c.searchString(c.errorExpr, doc)
	result.Token = c.searchString(c.tokenExpr, doc)

	user, err := c.searchUser(doc)
	if err != nil {
		return model.LoginResult{}, c.decodeFailed(opLogin, err, MsgLoginFailed)
	}
	result.User = user

	if user != nil && c.sessions != nil {
		if err := c.sessions.Record(ctx, slot, *user, result.Token); err != nil {
			return model.LoginResult{}, apperrors.RequestFailed(MsgLoginFailed, 0, fmt.Errorf("record session: %w", err))
		}
	}
	return result, nil
}

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	body, err := c.do(ctx, call{op: opListUsers, method: http.MethodGet, fallback: MsgFetchUsersFailed}, nil, "")
	if err != nil {
		return nil, err
	}
	var out []model.UserProfile
	if err := c.decode(opListUsers, body, &out, MsgFetchUsersFailed); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchUser returns one account.
func (c *Client) FetchUser(ctx context.Context, id model.UserID) (model.UserProfile, error) {
	var out model.UserProfile
	body, err := c.do(ctx, call{op: opFetchUser, method: http.MethodGet, path: url.PathEscape(id.String()), fallback: MsgFetchUserFailed}, nil, "")
	if err != nil {
		return out, err
	}
	err = c.decode(opFetchUser, body, &out, MsgFetchUserFailed)
	return out, err
}

// UpdateUser replaces the editable profile fields.
func (c *Client) UpdateUser(ctx context.Context, id model.UserID, patch model.UserPatch) (model.UserProfile, error) {
	var out model.UserProfile
	body, err := c.doJSON(ctx, call{op: opUpdateUser, method: http.MethodPut, path: url.PathEscape(id.String()), fallback: MsgUpdateUserFailed}, patch)
	if err != nil {
		return out, err
	}
	err = c.decode(opUpdateUser, body, &out, MsgUpdateUserFailed)
	return out, err
}

// UpdateProfilePicture uploads the picture as the multipart part "file".
func (c *Client) UpdateProfilePicture(ctx context.Context, id model.UserID, upload model.PictureUpload) (model.UserProfile, error) {
	var out model.UserProfile
	cl := call{op: opUpdatePicture, method: http.MethodPut, path: url.PathEscape(id.String()) + "/profile-picture", fallback: MsgUpdatePictureFail}

	payload, contentType, err := encodeMultipart(upload)
	if err != nil {
		return out, apperrors.RequestFailed(MsgUpdatePictureFail, 0, err)
	}

	body, err := c.do(ctx, cl, payload, contentType)
	if err != nil {
		return out, err
	}
	err = c.decode(opUpdatePicture, body, &out, MsgUpdatePictureFail)
	return out, err
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id model.UserID) (model.MessageResponse, error) {
	var out model.MessageResponse
	body, err := c.do(ctx, call{op: opDeleteUser, method: http.MethodDelete, path: url.PathEscape(id.String()), fallback: MsgDeleteUserFailed}, nil, "")
	if err != nil {
		return out, err
	}
	if err := c.decode(opDeleteUser, body, &out, MsgDeleteUserFailed); err != nil {
		return out, err
	}
	out.Raw = body
	return out, nil
}

type call struct {
	op       string
	method   string
	path     string
	fallback string
}

func (c *Client) doJSON(ctx context.Context, cl call, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.RequestFailed(cl.fallback, 0, fmt.Errorf("encode %s request: %w", cl.op, err))
	}
	return c.do(ctx, cl, bytes.NewReader(data), "application/json")
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, cl call, payload io.Reader, contentType string) ([]byte, error) {
	start := time.Now()
	body, err := c.roundTrip(ctx, cl, payload, contentType)
	c.metrics.Observe(cl.op, err, time.Since(start))
	if err != nil {
		c.logger.WarnContext(ctx, "user api call failed",
			slog.String("operation", cl.op),
			slog.Duration("duration", time.Since(start)),
			slog.String("outcome", obserrors.Outcome(err)),
			slog.String("error_class", obserrors.Classify(err)),
			slog.Any("error", err))
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, cl call, payload io.Reader, contentType string) ([]byte, error) {
	target := c.usersURL
	if cl.path != "" {
		target += "/" + cl.path
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, payload)
	if err != nil {
		return nil, apperrors.RequestFailed(cl.fallback, 0, fmt.Errorf("create %s request: %w", cl.op, err))
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok, ok := TokenFromContext(ctx); ok {
		(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.RequestFailed(cl.fallback, 0, fmt.Errorf("%s request failed: %w", cl.op, err))
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := c.serverMessage(body)
		if msg == "" {
			msg = cl.fallback
		}
		cause := fmt.Errorf("%s %s: %s", cl.method, req.URL.Path, resp.Status)
		if readErr != nil {
			cause = errors.Join(cause, fmt.Errorf("read error response: %w", readErr))
		}
		return nil, apperrors.RequestFailed(msg, resp.StatusCode, cause)
	}
	if readErr != nil {
		return nil, apperrors.RequestFailed(cl.fallback, resp.StatusCode, fmt.Errorf("read %s response: %w", cl.op, readErr))
	}
	return body, nil
}

// decode unmarshals a success body. An empty body leaves out at its zero value.
func (c *Client) decode(op string, body []byte, out any, fallback string) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return c.decodeFailed(op, err, fallback)
	}
	return nil
}

func (c *Client) decodeFailed(op string, err error, fallback string) error {
	return apperrors.RequestFailed(fallback, 0, fmt.Errorf("decode %s response: %w", op, err))
}

// serverMessage extracts the API's message from an error body, or "".
func (c *Client) serverMessage(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	return c.searchString(c.errorExpr, doc)
}

func (c *Client) searchString(expr string, doc any) string {
	if doc == nil {
		return ""
	}
	v, err := jmespath.Search(expr, doc)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// searchUser locates the login user and re-decodes it into model.User.
func (c *Client) searchUser(doc any) (*model.User, error) {
	if doc == nil {
		return nil, nil
	}
	// A missing or non-object user means the login carried no identity.
	v, searchErr := jmespath.Search(c.userExpr, doc)
	obj, ok := v.(map[string]any)
	if searchErr != nil || !ok {
		return nil, nil
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(upload model.PictureUpload) (io.Reader, string, error) {
	if upload.Content == nil {
		return nil, "", errors.New("profile picture content is required")
	}
	filename := upload.Filename
	if filename == "" {
		filename = "upload"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	ct := upload.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	header.Set("Content-Type", ct)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return nil, "", fmt.Errorf("copy file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
