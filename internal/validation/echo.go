package validation

import (
	"fmt"

	"github.com/souleimarejeb/rbac-app/internal/model"
)

// EchoValidator implements echo.Validator by dispatching to the explicit
// validators above.
type EchoValidator struct{}

// Validate implements echo.Validator interface.
func (EchoValidator) Validate(i interface{}) error {
	switch v := i.(type) {
	case *model.NewUser:
		return NewUser(*v)
	case *model.UserPatch:
		return Patch(*v)
	case *model.Credentials:
		return Credentials(*v)
	default:
		return fmt.Errorf("no validator registered for %T", i)
	}
}
