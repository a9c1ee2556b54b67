package auth

import "github.com/DukeRupert/clientdesk/internal/templ/shared"

// Mode selects which card the login page shows.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// LoginFormValues contains form field values
type LoginFormValues struct {
	Email string
}

// RegisterFormValues contains form field values. Passwords are never
// echoed back.
type RegisterFormValues struct {
	Name  string
	Email string
}

// LoginPageData contains data for the login/register page
type LoginPageData struct {
	shared.Page
	Mode      Mode
	Redirect  string
	Login     LoginFormValues
	Register  RegisterFormValues
	Errors    map[string]string
	FormError string
}

// IsRegister reports whether the registration card is shown.
func (d LoginPageData) IsRegister() bool {
	return d.Mode == ModeRegister
}
