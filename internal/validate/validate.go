// Package validate checks form input before it reaches a store.
//
// Struct rules live as `validate` tags on the domain input types and are run
// through go-playground/validator. Rules that need the cached collection,
// such as the father/mother constraint, are plain functions here.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/easyloft/easyloft-client/internal/domain"
)

// FieldError is one failed rule. Field is the wire name path, for example
// "purchases[0].sellerName".
type FieldError struct {
	Field   string
	Message string
}

// Errors collects every failed rule of one form.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// For returns the message for field, or "" when it passed.
func (e Errors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(wireName)
		instance = v
	})
	return instance
}

// Struct runs the tag rules of v. It returns nil or Errors.
func Struct(v any) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// Pigeon runs the tag rules of in plus the parent rule against the cached
// pigeons. selfID is empty for a new pigeon.
func Pigeon(in domain.PigeonInput, selfID string, pigeons []domain.Pigeon) error {
	var out Errors
	if err := Struct(in); err != nil {
		var errs Errors
		if !errors.As(err, &errs) {
			return err
		}
		out = append(out, errs...)
	}
	out = append(out, Parents(in.LoftID, selfID, in.FatherID, in.MotherID, pigeons)...)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Parents checks father and mother against the cached pigeons: each must
// exist, live in loftID, differ from selfID and have the matching sex.
func Parents(loftID, selfID, fatherID, motherID string, pigeons []domain.Pigeon) Errors {
	var out Errors
	check := func(field, id string, want domain.Sex) {
		if id == "" {
			return
		}
		if selfID != "" && id == selfID {
			out = append(out, FieldError{Field: field, Message: "a pigeon cannot be its own parent"})
			return
		}
		parent, ok := find(pigeons, id)
		switch {
		case !ok:
			out = append(out, FieldError{Field: field, Message: "not found"})
		case parent.LoftID != loftID:
			out = append(out, FieldError{Field: field, Message: "must belong to the same loft"})
		case parent.Sex != want:
			out = append(out, FieldError{Field: field, Message: "must be " + strings.ToLower(want.Label())})
		}
	}
	check("fatherId", fatherID, domain.SexMale)
	check("motherId", motherID, domain.SexFemale)
	return out
}

func find(pigeons []domain.Pigeon, id string) (domain.Pigeon, bool) {
	for _, p := range pigeons {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Pigeon{}, false
}

func wireName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return lowerFirst(fld.Name)
	}
	return name
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "eqfield":
		return "does not match"
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be " + fe.Param() + " or more"
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
