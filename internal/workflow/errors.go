package workflow

import (
	"fmt"

	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
)

func invalidTransition(op string, from, event any) error {
	return domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("cannot %v from %v", event, from), nil)
}

func validationFailed(op, msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
}

func unauthorized(op, msg string) error {
	return domainagg.NewError(domainagg.CodeUnauthorized, op, msg, nil)
}
