package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
	"github.com/souleimarejeb/rbac-app/internal/model"
)

var validate = validator.New()

// Field rules. Lengths count runes.
const (
	nameRule             = "min=2,max=100"
	usernameRule         = "required,min=2,max=100"
	emailRule            = "required,email,min=10,max=255"
	passwordRule         = "required"
	signInPasswordRule   = "required,min=8,max=100"
	authenticationIDRule = "required"
)

// Name checks an optional display name or last name.
func Name(field, v string) error {
	return check(field, v, nameRule)
}

// Username checks a username.
func Username(v string) error {
	return check("username", v, usernameRule)
}

// Email checks an email address.
func Email(v string) error {
	return check("email", v, emailRule)
}

// Password checks a password supplied on sign-up, creation or update.
func Password(v string) error {
	return check("password", v, passwordRule)
}

// SignInPassword checks a password supplied on sign-in.
func SignInPassword(v string) error {
	return check("password", v, signInPasswordRule)
}

// AuthenticationID checks the external authentication identifier.
func AuthenticationID(v string) error {
	return check("authentication_id", v, authenticationIDRule)
}

// NewUser validates a creation payload field by field.
func NewUser(u model.NewUser) error {
	var errs fieldErrors
	if u.Name != "" {
		errs.add(Name("name", u.Name))
	}
	if u.LastName != "" {
		errs.add(Name("last_name", u.LastName))
	}
	errs.add(Username(u.Username))
	errs.add(Password(u.Password))
	errs.add(Email(u.Email))
	errs.add(AuthenticationID(u.AuthenticationID))
	return errs.err()
}

// Patch validates only the fields present in a partial update.
func Patch(p model.UserPatch) error {
	var errs fieldErrors
	if p.Name != nil {
		errs.add(Name("name", *p.Name))
	}
	if p.LastName != nil {
		errs.add(Name("last_name", *p.LastName))
	}
	if p.Username != nil {
		errs.add(Username(*p.Username))
	}
	if p.Password != nil {
		errs.add(Password(*p.Password))
	}
	if p.Email != nil {
		errs.add(Email(*p.Email))
	}
	if p.AuthenticationID != nil {
		errs.add(AuthenticationID(*p.AuthenticationID))
	}
	return errs.err()
}

// Credentials validates a sign-in payload.
func Credentials(c model.Credentials) error {
	var errs fieldErrors
	errs.add(Username(c.Username))
	errs.add(SignInPassword(c.Password))
	return errs.err()
}

// FieldError reports a single failed rule.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e *FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

func check(field, value, rule string) error {
	err := validate.Var(value, rule)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: field, Rule: verrs[0].Tag(), Param: verrs[0].Param()}
	}
	return fmt.Errorf("%s: %w", field, err)
}

type fieldErrors []string

func (f *fieldErrors) add(err error) {
	if err != nil {
		*f = append(*f, err.Error())
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.Validation(f, "invalid request body")
}
