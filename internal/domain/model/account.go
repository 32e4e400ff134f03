package model

import (
	"net/mail"
	"strings"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
)

// Credentials is the login form body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest registers a new user.
type SignupRequest struct {
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Name      string          `json:"name"`
	CompanyID *int64          `json:"companyId,omitempty"`
	Role      domainauth.Role `json:"role"`
}

// SignupRoles lists the roles a user can pick when signing up.
var SignupRoles = []domainauth.Role{
	domainauth.RoleRecruiter, domainauth.RoleInterviewer, domainauth.RoleManager,
}

// Normalize trims input fields.
func (r *SignupRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

// PasswordResetRequest identifies a user by company, name and email and sets a new password.
type PasswordResetRequest struct {
	CompanyName string `json:"companyName"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// PasswordResetResponse carries the backend confirmation text.
type PasswordResetResponse struct {
	Message string `json:"message"`
}

// ProfileUpdate changes the current user's details. Empty fields are left unchanged.
type ProfileUpdate struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Password    string `json:"password,omitempty"`
}

// ValidEmail reports whether s parses as a single address.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// ChatRequest is a question for the assistant.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatAnswer is the assistant's reply, in markdown.
type ChatAnswer struct {
	Answer string `json:"answer"`
}
