package workflow

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/contentflow-backend/internal/domain/requests"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func briefValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// NormalizeBrief trims every text field, drops blank list entries, applies
// the default priority and validates the result.
func NormalizeBrief(b requests.Brief) (requests.Brief, error) {
	const op = "workflow.brief.normalize"
	b.Title = strings.TrimSpace(b.Title)
	b.ContentType = requests.ContentType(strings.TrimSpace(string(b.ContentType)))
	b.Priority = requests.Priority(strings.ToLower(strings.TrimSpace(string(b.Priority))))
	if b.Priority == "" {
		b.Priority = requests.PriorityMedium
	}
	b.Purpose = strings.TrimSpace(b.Purpose)
	b.Description = strings.TrimSpace(b.Description)
	b.TargetAudience = strings.TrimSpace(b.TargetAudience)
	b.KeyPoints = cleanList(b.KeyPoints)
	b.PublishPlatforms = cleanList(b.PublishPlatforms)
	b.References = cleanList(b.References)
	b.Notes = strings.TrimSpace(b.Notes)
	if !b.Deadline.IsZero() {
		b.Deadline = b.Deadline.UTC()
	}

	if err := briefValidator().Struct(b); err != nil {
		return b, validationFailed(op, describeValidation(err))
	}
	return b, nil
}

// PatchBrief overlays the present fields of p on b. The result still needs
// NormalizeBrief.
func PatchBrief(b requests.Brief, p requests.BriefPatch) requests.Brief {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.ContentType != nil {
		b.ContentType = *p.ContentType
	}
	if p.Deadline != nil {
		b.Deadline = *p.Deadline
	}
	if p.Priority != nil {
		b.Priority = *p.Priority
	}
	if p.Purpose != nil {
		b.Purpose = *p.Purpose
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.TargetAudience != nil {
		b.TargetAudience = *p.TargetAudience
	}
	if p.KeyPoints != nil {
		b.KeyPoints = append([]string(nil), (*p.KeyPoints)...)
	}
	if p.PublishPlatforms != nil {
		b.PublishPlatforms = append([]string(nil), (*p.PublishPlatforms)...)
	}
	if p.References != nil {
		b.References = append([]string(nil), (*p.References)...)
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	return b
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, field+" must not be empty")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
