// Package validation checks form inputs before they reach the backend and
// turns failures into per-field messages for inline display.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\(?([0-9]{2})\)?[-. ]?([0-9]{4,5})[-. ]?([0-9]{4})$`)

// fieldLabels maps form field names to the labels used in messages.
var fieldLabels = map[string]string{
	"name":            "Nome",
	"email":           "Email",
	"phone":           "Telefone",
	"company":         "Empresa",
	"password":        "Senha",
	"confirmPassword": "Confirmação de senha",
}

// requiredMessages holds the "required" wording per field; the rest use
// the masculine form.
var requiredMessages = map[string]string{
	"company":         "Empresa é obrigatória",
	"password":        "Senha é obrigatória",
	"confirmPassword": "Confirmação de senha é obrigatória",
}

// Validator wraps go-playground/validator with the app's custom tags.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the phone_br tag registered and field names
// taken from json tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("phone_br", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates s. It returns a *domain.ValidationError carrying one
// message per failing field, or nil.
func (val *Validator) Struct(op string, s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.Internal(err, op, "validation failed")
	}

	out := &domain.ValidationError{Op: op, Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = fieldMessage(fe)
	}
	return out
}

// fieldMessage converts a single FieldError into a user-facing message.
func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return label + " é obrigatório"
	case "email":
		return "Email inválido"
	case "phone_br":
		return "Telefone inválido (ex: (11) 99999-9999)"
	case "eqfield":
		return "Senhas não coincidem"
	case "min":
		return fmt.Sprintf("%s deve ter pelo menos %s caracteres", label, fe.Param())
	default:
		return fmt.Sprintf("%s inválido", label)
	}
}
