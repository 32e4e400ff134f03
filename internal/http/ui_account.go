package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/minboot/ats-web/internal/domain/model"
	"github.com/minboot/ats-web/internal/http/validation"
)

// Profile renders the signed-in user's identity and the profile update form.
func (h *UIHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		redirect(w, r, "/login?from=/profile")
		return
	}
	form := model.ProfileUpdate{Name: identity.Name, Email: identity.Email, CompanyName: identity.CompanyName}
	h.renderProfile(w, r, http.StatusOK, form, nil, "")
}

// UpdateProfile sends changed fields to the backend and re-reads the identity so the
// header and ownership checks see the new values.
func (h *UIHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		redirect(w, r, "/login?from=/profile")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := model.ProfileUpdate{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		CompanyName: strings.TrimSpace(r.PostFormValue("companyName")),
		Password:    r.PostFormValue("password"),
	}
	fv := validation.New().
		Validate("name", form.Name, validation.Required("Name", 50)).
		Validate("email", form.Email, validation.Required("Email", 255), validation.Email()).
		Validate("companyName", form.CompanyName, validation.Optional("Company name", 100)).
		Validate("password", form.Password, validation.Password(minPasswordLen)).
		Validate("password_confirm", r.PostFormValue("password_confirm"), validation.Matches(form.Password, msgPasswordsDiffer))
	if !fv.Valid() {
		h.renderProfile(w, r, http.StatusUnprocessableEntity, form, fv.Errors(), "")
		return
	}

	v := visitor(r)
	if err := v.Client.UpdateProfile(r.Context(), identity.ID, form); err != nil {
		if h.handleFailure(w, r, err) {
			return
		}
		h.renderProfile(w, r, statusFor(err), form, nil, UserMessage(err))
		return
	}
	v.Session.Refresh(r.Context())
	redirect(w, r, withNotice("/profile", "profile_saved"))
}

func (h *UIHandlers) renderProfile(
	w http.ResponseWriter, r *http.Request, status int,
	form model.ProfileUpdate, fieldErrs map[string]string, msg string,
) {
	form.Password = ""
	b := NewTemplateData(r, PageMeta{Title: "My page", PageTitle: "My page", CurrentPage: PageProfile}).
		With("Form", form).
		WithError(msg)
	if len(fieldErrs) > 0 {
		b.WithFieldErrors(fieldErrs)
	}
	h.renderPageStatus(w, r, status, b.Build())
}

// WithdrawPage renders the account closing confirmation.
func (h *UIHandlers) WithdrawPage(w http.ResponseWriter, r *http.Request) {
	h.renderWithdraw(w, r, http.StatusOK, nil, "")
}

// Withdraw closes the account once the confirmation phrase matches, then signs out locally.
func (h *UIHandlers) Withdraw(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	fv := validation.New().
		Validate("confirm", r.PostFormValue("confirm"), validation.Phrase(WithdrawPhrase))
	if !fv.Valid() {
		h.renderWithdraw(w, r, http.StatusUnprocessableEntity, fv.Errors(), "")
		return
	}

	v := visitor(r)
	if err := v.Client.Withdraw(r.Context()); err != nil {
		if h.handleFailure(w, r, err) {
			return
		}
		h.renderWithdraw(w, r, statusFor(err), nil, UserMessage(err))
		return
	}
	// The account is gone; clear the local session even if the visitor has disconnected.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), refreshTimeout)
	defer cancel()
	v.Session.Logout(ctx)
	h.logger().InfoContext(r.Context(), "account withdrawn", "visitor_id", v.ID)
	redirect(w, r, withNotice("/", "withdrawn"))
}

func (h *UIHandlers) renderWithdraw(w http.ResponseWriter, r *http.Request, status int, fieldErrs map[string]string, msg string) {
	b := NewTemplateData(r, PageMeta{Title: "Close account", PageTitle: "Close account", CurrentPage: PageWithdraw}).
		With("Phrase", WithdrawPhrase).
		WithError(msg)
	if len(fieldErrs) > 0 {
		b.WithFieldErrors(fieldErrs)
	}
	h.renderPageStatus(w, r, status, b.Build())
}
