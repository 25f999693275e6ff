// Package validation checks API and CLI requests before they reach the
// harmonizer.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	fuxierr "github.com/agenthands/fuxi/internal/errors"
)

var (
	validate *validator.Validate

	projectPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("project", func(fl validator.FieldLevel) bool {
		return projectPattern.MatchString(fl.Field().String())
	})
}

// HarmonizeRequest starts a harmonization run.
type HarmonizeRequest struct {
	Mode      string `json:"mode" validate:"omitempty,oneof=all current future"`
	ProjectID string `json:"project_id" validate:"omitempty,project"`
}

// ThresholdRequest asks for connection suggestions. A nil threshold means the
// configured default.
type ThresholdRequest struct {
	Threshold *float64 `json:"threshold" validate:"omitempty,gte=0,lte=1"`
}

// ValidateHarmonizeRequest validates a run request.
func ValidateHarmonizeRequest(req *HarmonizeRequest) error {
	if req == nil {
		return fuxierr.NewValidationError("", "harmonize request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateThresholdRequest validates a suggestion request.
func ValidateThresholdRequest(req *ThresholdRequest) error {
	if req == nil {
		return fuxierr.NewValidationError("", "threshold request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateProjectID checks a project id taken from a path or flag.
func ValidateProjectID(id string) error {
	if !projectPattern.MatchString(id) {
		return fuxierr.NewValidationError("project_id", fmt.Sprintf("%q must be 1-64 letters, digits, '.', '_' or '-'", id))
	}
	return nil
}

// ValidateMode checks a mode string. Empty is allowed.
func ValidateMode(mode string) error {
	if err := validate.Var(mode, "omitempty,oneof=all current future"); err != nil {
		return fuxierr.NewValidationError("mode", fmt.Sprintf("%q is not one of all, current, future", mode))
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fuxierr.NewValidationError("", err.Error())
	}

	fields := make([]string, 0, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		msgs = append(msgs, fieldMessage(fe))
	}
	return fuxierr.NewValidationError(strings.Join(fields, ","), strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "project":
		return "must be 1-64 letters, digits, '.', '_' or '-'"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
