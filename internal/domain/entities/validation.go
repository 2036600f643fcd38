package entities

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. Field names in errors are the JSON
// names so issue paths match what clients send.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Issue is a single field-level validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError lists every constraint a record failed.
type ValidationError struct {
	Kind   string  `json:"kind"`
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(parts, "; "))
}

// Field returns the first issue recorded for path.
func (e *ValidationError) Field(path string) (Issue, bool) {
	for _, issue := range e.Issues {
		if issue.Path == path {
			return issue, true
		}
	}
	return Issue{}, false
}

// ValidateNote checks a decoded note.
func ValidateNote(n *Note) error { return check("note", n) }

// ValidateTask checks a mapped task.
func ValidateTask(t *Task) error { return check("task", t) }

// ValidateSignIn checks the sign-in form.
func ValidateSignIn(c *SignInCredentials) error { return check("sign-in", c) }

// ValidateSignUp checks the sign-up form, including password confirmation.
func ValidateSignUp(c *SignUpCredentials) error { return check("sign-up", c) }

// ValidateCalendarEvent checks a calendar event.
func ValidateCalendarEvent(e *CalendarEvent) error { return check("calendar event", e) }

func check(kind string, v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %s: %w", kind, err)
	}

	verr := &ValidationError{Kind: kind, Issues: make([]Issue, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Issues = append(verr.Issues, Issue{
			Path:    fieldPath(fe),
			Message: message(fe),
		})
	}
	return verr
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		if fe.Param() == "Password" {
			return "Passwords don't match"
		}
		return fmt.Sprintf("Must match %s", fe.Param())
	default:
		return fmt.Sprintf("Failed %q constraint", fe.Tag())
	}
}
