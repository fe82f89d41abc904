package http

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/go-playground/validator/v10"
)

// ValidationError carries the first failure message and every offending field.
type ValidationError struct {
	Message string
	Fields  map[string]bool
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FormValidator plugs go-playground/validator into echo.Context.Validate.
type FormValidator struct {
	validate *validator.Validate
	policy   config.PasswordPolicy
}

func NewFormValidator(policy config.PasswordPolicy) *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return formName(field.Tag.Get("form"), field.Name)
	})

	fv := &FormValidator{validate: v, policy: policy}
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return policy.Validate(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		id, err := strconv.ParseUint(fl.Field().String(), 10, 64)
		return err == nil && id > 0
	})
	return fv
}

func (v *FormValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]bool, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if out.Message == "" {
			out.Message = v.message(fe)
		}
		out.Fields[fe.Field()] = true
	}
	return out
}

func (v *FormValidator) message(fe validator.FieldError) string {
	field := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return "Please enter a valid email address."
	case "eqfield":
		return "Passwords do not match."
	case "password":
		if err := v.policy.Validate(fe.Value().(string)); err != nil {
			msg := err.Error()
			return strings.ToUpper(msg[:1]) + msg[1:] + "."
		}
	}
	return fmt.Sprintf("%s is invalid.", field)
}

func formName(tag, fallback string) string {
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "" || name == "-" {
		return fallback
	}
	return name
}

func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
