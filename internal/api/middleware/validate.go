package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/go-playground/validator/v10"
)

type bodyKey[T any] struct{}

// Normalizer is implemented by request bodies that clean their fields before
// the validation rules run, so the rules see the value that will be stored.
type Normalizer interface {
	Normalize()
}

// NewValidator returns a validator that reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate decodes the JSON body into T, runs its `validate` struct tags and
// makes the value available to the handler through Body. A *T implementing
// Normalizer is normalized first. Unknown fields are rejected. Each name in
// params must be a non-empty path value.
func Validate[T any](v *validator.Validate, params ...string) func(http.Handler) http.Handler {
	params = append([]string(nil), params...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, name := range params {
				if PathValue(r, name) == "" {
					envelope.WriteError(w, r, apperror.Validation(fmt.Sprintf("%s path parameter is required", name)))
					return
				}
			}

			body, err := decodeBody[T](r)
			if err != nil {
				envelope.WriteError(w, r, err)
				return
			}
			if n, ok := any(&body).(Normalizer); ok {
				n.Normalize()
			}
			if err := v.Struct(&body); err != nil {
				envelope.WriteError(w, r, validationError[T](err))
				return
			}

			ctx := context.WithValue(r.Context(), bodyKey[T]{}, body)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Body returns the value stored by Validate[T].
func Body[T any](r *http.Request) (T, bool) {
	body, ok := r.Context().Value(bodyKey[T]{}).(T)
	return body, ok
}

func decodeBody[T any](r *http.Request) (T, error) {
	var body T
	if r.Body == nil {
		return body, nil
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(&body)
	switch {
	case errors.Is(err, io.EOF):
		return body, nil
	case err != nil:
		return body, decodeError(err)
	}
	if decoder.More() {
		return body, apperror.Validation("Request body must contain a single JSON object")
	}
	return body, nil
}

func decodeError(err error) error {
	var (
		maxBytes  *http.MaxBytesError
		syntax    *json.SyntaxError
		typeError *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxBytes):
		return apperror.New(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", maxBytes.Limit), apperror.CodePayloadTooLarge)
	case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
		return apperror.Validation("Request body must be valid JSON").Wrap(err)
	case errors.As(err, &typeError):
		return apperror.Validation(fmt.Sprintf("%s must be a %s", typeError.Field, jsonKind(typeError.Type))).Wrap(err)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return apperror.Validation(fmt.Sprintf("%s is not allowed", strings.Trim(field, `"`))).Wrap(err)
	default:
		return apperror.Validation("Request body could not be decoded").Wrap(err)
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64, reflect.Int32:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}

func validationError[T any](err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperror.Validation("Request body is invalid").Wrap(err)
	}
	var bodyType = reflect.TypeOf((*T)(nil)).Elem()
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fieldMessage(bodyType, fe))
	}
	return apperror.Validation(strings.Join(messages, "; ")).Wrap(err)
}

// fieldMessage renders one failed rule. The `label` struct tag, when present,
// names the field in the message; otherwise its json name is used.
func fieldMessage(bodyType reflect.Type, fe validator.FieldError) string {
	label := fe.Field()
	if bodyType.Kind() == reflect.Struct {
		if field, ok := bodyType.FieldByName(fe.StructField()); ok {
			if l := field.Tag.Get("label"); l != "" {
				label = l
			}
		}
	}

	numeric := false
	switch fe.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64, reflect.Int32:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if numeric {
			return fmt.Sprintf("%s must be greater than or equal to %s", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("%s must be less than or equal to %s", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "email":
		return label + " must be valid"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "isodate":
		return label + " must be in valid ISO format (YYYY-MM-DDTHH:mm:ssZ)"
	default:
		return fmt.Sprintf("%s failed %s validation", label, fe.Tag())
	}
}
