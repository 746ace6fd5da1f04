package httpx

import (
	"log/slog"
	"net/http"

	"github.com/freelancehub/web/internal/domain/model"
	"github.com/freelancehub/web/internal/service"
)

// MsgRegisteredSignIn greets a freshly registered user on the login page.
const MsgRegisteredSignIn = "Registration successful! Please sign in."

func loginMeta() PageMeta {
	return PageMeta{Title: "Sign In", PageTitle: "Sign In", CurrentPage: PageLogin}
}

func registerMeta() PageMeta {
	return PageMeta{Title: "Create Account", PageTitle: "Create Account", CurrentPage: PageRegister}
}

// LoginForm renders the sign-in form. ?redirect= is carried through the form.
func (h *UIHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	builder := NewTemplateData(r, loginMeta()).
		With("Email", "").
		With("Redirect", safeRedirectPath(q.Get("redirect")))
	if q.Get("registered") == "1" {
		builder.WithNotice(MsgRegisteredSignIn)
	}
	h.renderPage(w, r, builder.Build(), http.StatusOK)
}

// LoginSubmit authenticates against the user API. On success the browser gets
// a new slot cookie and is sent to the redirect target.
func (h *UIHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := model.LoginRequest{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	target := safeRedirectPath(r.PostFormValue("redirect"))
	formData := map[string]any{"Email": req.Email, "Redirect": target}

	res, err := h.Auth.Login(r.Context(), GetSlotFromContext(r.Context()), req)
	if err != nil {
		h.logger().InfoContext(r.Context(), "login failed", slog.Any("error", err))
		h.renderError(w, r, ErrorOpts{
			Err:       err,
			PageMeta:  loginMeta(),
			Data:      formData,
			Fallback:  service.MsgLoginFailed,
			ShowToast: IsHTMX(r),
		})
		return
	}

	if !res.SignedIn {
		builder := NewTemplateData(r, loginMeta()).WithNotice(res.Message)
		for k, v := range formData {
			builder.With(k, v)
		}
		h.renderPage(w, r, builder.Build(), http.StatusOK)
		return
	}

	h.setSlotCookie(w, r, res.Slot)
	triggerToast(w, res.Message, ToastSuccess)
	redirect(w, r, target)
}

// RegisterForm renders the sign-up form.
func (h *UIHandlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, registerMeta()).
		With("Form", model.RegisterRequest{Role: model.RoleFreelancer}).
		With("Roles", model.Roles()).
		Build()
	h.renderPage(w, r, data, http.StatusOK)
}

// RegisterSubmit creates the account and sends the browser to the login page.
func (h *UIHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := model.RegisterRequest{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}

	msg, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		req.Password = ""
		h.renderError(w, r, ErrorOpts{
			Err:       err,
			PageMeta:  registerMeta(),
			Data:      map[string]any{"Form": req, "Roles": model.Roles()},
			Fallback:  service.MsgRegisterFailed,
			ShowToast: IsHTMX(r),
		})
		return
	}

	triggerToast(w, msg, ToastSuccess)
	redirect(w, r, service.LoginPath+"?registered=1")
}

// Logout clears the browser's session and cookie, then goes home.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if slot := GetSlotFromContext(r.Context()); slot != "" {
		if err := h.Auth.Logout(r.Context(), slot); err != nil {
			h.logger().WarnContext(r.Context(), "failed to clear session on logout", slog.Any("error", err))
		}
	}
	h.clearSlotCookie(w, r)
	redirect(w, r, "/")
}
