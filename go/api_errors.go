package adoptionserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptionsports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/observability"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

var apiResponder = apierrors.NewChainedResponder("",
	mapRequestError,
	mapPetsError,
	mapAdoptionsError,
	mapUsersError,
).WithInternalHook(reportInternal)

// respondError maps service and binding errors to RFC 7807 responses.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apiResponder.RespondError(c, err)
}

// paramError reports a malformed path or query parameter.
type paramError struct {
	name   string
	reason string
}

func (e paramError) Error() string {
	return fmt.Sprintf("parameter %s %s", e.name, e.reason)
}

var registerFieldNames sync.Once

// useJSONFieldNames makes validation errors report the JSON name of a field.
func useJSONFieldNames() {
	registerFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func mapRequestError(err error) (apierrors.ProblemDetail, bool) {
	var pe paramError
	if errors.As(err, &pe) {
		return apierrors.NewValidationProblem(map[string]string{pe.name: pe.reason}), true
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[lowerFirst(fe.Field())] = describeFieldError(fe)
		}
		return apierrors.NewValidationProblem(fields), true
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return apierrors.NewValidationProblem(map[string]string{typeErr.Field: "has the wrong type"}), true
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return apierrors.ErrBadRequest.WithDetail("request body is not valid JSON"), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapPetsError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, petsports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("pet not found").WithExtension("resourceType", "pet"), true
	case errors.Is(err, petsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(causeOf(err, petsapp.ErrInvalidInput)), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapAdoptionsError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, adoptionsports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("adoption application not found").WithExtension("resourceType", "adoption"), true
	case errors.Is(err, adoptionsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(causeOf(err, adoptionsapp.ErrInvalidInput)), true
	case errors.Is(err, adoptionsapp.ErrInvalidState):
		return apierrors.NewInvalidStateProblem(causeOf(err, adoptionsapp.ErrInvalidState)), true
	case errors.Is(err, adoptionsapp.ErrConflict):
		return apierrors.NewConflictProblem("you have already applied for this pet"), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapUsersError(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, userports.ErrNotFound) {
		return apierrors.ErrNotFound.WithDetail("user not found").WithExtension("resourceType", "user"), true
	}
	return apierrors.ProblemDetail{}, false
}

func reportInternal(c *gin.Context, err error) {
	slog.Default().LogAttrs(c.Request.Context(), slog.LevelError, "unhandled request error",
		slog.String("http.method", c.Request.Method),
		slog.String("http.route", c.FullPath()),
		slog.String("error", err.Error()),
	)
	observability.CaptureError(err)
}

// causeOf strips the category prefix added by the application layer.
func causeOf(err, category error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, category.Error()+": "); trimmed != "" {
		return trimmed
	}
	return msg
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "uuid":
		return "must be a UUID"
	}
	return "failed the " + fe.Tag() + " rule"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
