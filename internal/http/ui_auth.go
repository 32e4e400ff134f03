package httpx

import (
	"net"
	"net/http"
	"strings"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/domain/model"
	apperrors "github.com/minboot/ats-web/internal/errors"
	"github.com/minboot/ats-web/internal/guard"
	"github.com/minboot/ats-web/internal/http/validation"
	"github.com/minboot/ats-web/internal/observability/metrics"
)

const (
	minPasswordLen     = 4
	msgPasswordsDiffer = "Passwords do not match."
	msgEmailTaken      = "This email is already registered."
)

// LoginPage renders the sign-in form. Signed-in visitors go straight to where they were headed.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	from := safeRedirectPath(r.URL.Query().Get("from"))
	if IdentityFromContext(r.Context()) != nil {
		redirect(w, r, orHome(from))
		return
	}
	h.renderLogin(w, r, http.StatusOK, from, "", nil)
}

// Login authenticates against the backend. Wrong credentials are reported on the form and
// leave the session signed out.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	creds := model.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	from := safeRedirectPath(r.PostFormValue("from"))

	if !h.Limiter.Allow(clientIP(r)) {
		h.Metrics.RecordLogin(metrics.ResultFailure)
		h.renderLogin(w, r, http.StatusTooManyRequests, from, creds.Email,
			map[string]string{"form": MsgTooManyAttempts})
		return
	}

	fv := validation.New().
		Validate("email", creds.Email, validation.Required("Email", 255)).
		Validate("password", creds.Password, validation.Required("Password", 255))
	if !fv.Valid() {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, from, creds.Email, fv.Errors())
		return
	}

	v := visitor(r)
	identity, err := v.Session.Login(r.Context(), creds)
	if err != nil {
		status, msg := http.StatusBadGateway, UserMessage(err)
		result := metrics.ResultError
		switch {
		case apperrors.IsUnauthorized(err):
			status, msg, result = http.StatusUnauthorized, MsgBadCredentials, metrics.ResultFailure
		case apperrors.IsCanceled(err):
			return
		case apperrors.IsTransport(err):
			msg = MsgUnreachable
		case apperrors.GetStatus(err) > 0 && apperrors.GetStatus(err) < http.StatusInternalServerError:
			status, result = http.StatusUnprocessableEntity, metrics.ResultFailure
		}
		h.Metrics.RecordLogin(result)
		h.logger().InfoContext(r.Context(), "login failed", "visitor_id", v.ID, "code", apperrors.GetCode(err))
		h.renderLogin(w, r, status, from, creds.Email, map[string]string{"form": msg})
		return
	}

	h.Metrics.RecordLogin(metrics.ResultSuccess)
	h.logger().InfoContext(r.Context(), "login succeeded", "visitor_id", v.ID, "user_id", identity.ID)
	redirect(w, r, orHome(from))
}

func (h *UIHandlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, from, email string, errs map[string]string) {
	b := NewTemplateData(r, PageMeta{Title: "Sign in", PageTitle: "Sign in", CurrentPage: PageLogin}).
		With("From", from).
		With("Email", email)
	if msg := errs["form"]; msg != "" {
		b.WithError(msg)
		delete(errs, "form")
	}
	if len(errs) > 0 {
		b.WithFieldErrors(errs)
	}
	h.renderPageStatus(w, r, status, b.Build())
}

// Logout ends the session. The local session is cleared even if the backend call fails.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	v := visitor(r)
	v.Session.Logout(r.Context())
	h.logger().InfoContext(r.Context(), "logged out", "visitor_id", v.ID)
	redirect(w, r, withNotice(guard.LoginPath, "signed_out"))
}

// SignupForm is the registration form's state.
type SignupForm struct {
	Email       string
	Name        string
	Role        domainauth.Role
	CompanyMode string
	CompanyID   *int64
	CompanyName string
}

const (
	companyExisting = "existing"
	companyNew      = "new"
)

// SignupPage renders the registration form.
func (h *UIHandlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	form := SignupForm{Role: domainauth.RoleRecruiter, CompanyMode: companyExisting}
	if r.URL.Query().Get("company") == companyNew {
		form.CompanyMode = companyNew
	}
	h.renderSignup(w, r, http.StatusOK, form, nil, "")
}

// Signup registers a user, creating their company first when a new one was entered.
func (h *UIHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := SignupForm{
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Role:        domainauth.Role(r.PostFormValue("role")),
		CompanyMode: r.PostFormValue("company_mode"),
		CompanyID:   optionalID(r.PostFormValue("companyId")),
		CompanyName: strings.TrimSpace(r.PostFormValue("companyName")),
	}
	if form.CompanyMode != companyNew {
		form.CompanyMode = companyExisting
	}
	password := r.PostFormValue("password")

	roles := make([]string, len(model.SignupRoles))
	for i, role := range model.SignupRoles {
		roles[i] = string(role)
	}
	fv := validation.New().
		Validate("name", form.Name, validation.Required("Name", 50)).
		Validate("email", form.Email, validation.Required("Email", 255), validation.Email()).
		Validate("role", string(form.Role), validation.OneOf("Role", roles)).
		Validate("password", password, validation.Required("Password", 100), validation.Password(minPasswordLen)).
		Validate("password_confirm", r.PostFormValue("password_confirm"), validation.Matches(password, msgPasswordsDiffer))
	if form.CompanyMode == companyNew {
		fv.Validate("companyName", form.CompanyName, validation.Required("Company name", 100))
	} else if form.CompanyID == nil {
		fv.Add("companyId", "Choose your company.")
	}
	if !fv.Valid() {
		h.renderSignup(w, r, http.StatusUnprocessableEntity, form, fv.Errors(), "")
		return
	}

	ctx := r.Context()
	client := visitor(r).Client
	exists, err := client.EmailExists(ctx, form.Email)
	if err == nil && exists {
		h.renderSignup(w, r, http.StatusUnprocessableEntity, form, map[string]string{"email": msgEmailTaken}, "")
		return
	}
	if err != nil {
		// The backend rejects duplicates on signup as well.
		h.logger().WarnContext(ctx, "email check failed", "error", err)
	}

	companyID := form.CompanyID
	if form.CompanyMode == companyNew {
		id, err := client.CreateCompany(ctx, form.CompanyName)
		if err != nil {
			h.signupFailed(w, r, form, err)
			return
		}
		companyID = &id
	}

	req := model.SignupRequest{
		Email: form.Email, Password: password, Name: form.Name,
		CompanyID: companyID, Role: form.Role,
	}
	req.Normalize()
	if _, err := client.Signup(ctx, req); err != nil {
		if form.CompanyMode == companyNew {
			// The company exists now; offer it from the list on retry.
			form.CompanyMode, form.CompanyID = companyExisting, companyID
		}
		h.signupFailed(w, r, form, err)
		return
	}
	h.logger().InfoContext(ctx, "signed up", "visitor_id", visitor(r).ID, "role", string(form.Role))
	redirect(w, r, withNotice("/login", "signed_up"))
}

func (h *UIHandlers) signupFailed(w http.ResponseWriter, r *http.Request, form SignupForm, err error) {
	if apperrors.IsCanceled(err) {
		return
	}
	h.renderSignup(w, r, statusFor(err), form, nil, UserMessage(err))
}

func (h *UIHandlers) renderSignup(
	w http.ResponseWriter, r *http.Request, status int,
	form SignupForm, fieldErrs map[string]string, msg string,
) {
	companies, err := visitor(r).Client.Companies(r.Context())
	if err != nil {
		h.logger().WarnContext(r.Context(), "load companies failed", "error", err)
		if form.CompanyMode == companyExisting && msg == "" {
			msg = "The company list could not be loaded. You can still register a new company."
		}
	}
	b := NewTemplateData(r, PageMeta{Title: "Sign up", PageTitle: "Create an account", CurrentPage: PageSignup}).
		With("Form", form).
		With("Companies", companies).
		With("Roles", model.SignupRoles).
		WithError(msg)
	if len(fieldErrs) > 0 {
		b.WithFieldErrors(fieldErrs)
	}
	h.renderPageStatus(w, r, status, b.Build())
}

// EmailCheck renders the inline availability hint next to the signup email field.
func (h *UIHandlers) EmailCheck(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	data := map[string]any{"Email": email}
	switch {
	case email == "":
	case !model.ValidEmail(email):
		data["Error"] = "Enter a valid email address."
	default:
		exists, err := visitor(r).Client.EmailExists(r.Context(), email)
		if err != nil {
			if apperrors.IsCanceled(err) {
				return
			}
			data["Error"] = UserMessage(err)
			break
		}
		data["Exists"] = exists
		data["Checked"] = true
		if exists {
			data["Error"] = msgEmailTaken
		}
	}
	h.renderFragment(w, r, "email-check", data)
}

// ResetPasswordPage renders the password reset form.
func (h *UIHandlers) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.renderReset(w, r, http.StatusOK, model.PasswordResetRequest{}, nil, "", "")
}

// ResetPassword asks the backend to set a new password. The backend's confirmation text is
// shown as is, and the page forwards to sign-in.
func (h *UIHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := model.PasswordResetRequest{
		CompanyName: strings.TrimSpace(r.PostFormValue("companyName")),
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Password:    r.PostFormValue("password"),
	}
	fv := validation.New().
		Validate("companyName", req.CompanyName, validation.Required("Company name", 100)).
		Validate("name", req.Name, validation.Required("Name", 50)).
		Validate("email", req.Email, validation.Required("Email", 255), validation.Email()).
		Validate("password", req.Password, validation.Required("New password", 100), validation.Password(minPasswordLen)).
		Validate("password_confirm", r.PostFormValue("password_confirm"), validation.Matches(req.Password, msgPasswordsDiffer))
	if !fv.Valid() {
		h.renderReset(w, r, http.StatusUnprocessableEntity, req, fv.Errors(), "", "")
		return
	}

	msg, err := visitor(r).Client.ResetPassword(r.Context(), req)
	if err != nil {
		if apperrors.IsCanceled(err) {
			return
		}
		h.renderReset(w, r, statusFor(err), req, nil, UserMessage(err), "")
		return
	}
	if msg == "" {
		msg = "Your password has been changed."
	}
	h.renderReset(w, r, http.StatusOK, model.PasswordResetRequest{}, nil, "", msg)
}

func (h *UIHandlers) renderReset(
	w http.ResponseWriter, r *http.Request, status int,
	req model.PasswordResetRequest, fieldErrs map[string]string, errMsg, done string,
) {
	req.Password = ""
	b := NewTemplateData(r, PageMeta{Title: "Reset password", PageTitle: "Reset password", CurrentPage: PageResetPassword}).
		With("Form", req).
		With("Done", done).
		WithError(errMsg)
	if len(fieldErrs) > 0 {
		b.WithFieldErrors(fieldErrs)
	}
	h.renderPageStatus(w, r, status, b.Build())
}

func orHome(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// clientIP keys login throttling. Forwarded headers are not trusted here.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
