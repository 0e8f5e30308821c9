package relay

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/payment-relay/internal/common"
)

// Intent is the inbound payment request. Amounts are in major currency
// units; conversion to minor units happens during payload construction.
type Intent struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Mobile string  `json:"mobile" validate:"required,subscriber"`
	Name   string  `json:"name" validate:"required,min=2,max=50"`
}

var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("subscriber", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateIntent checks the intent against the static field rules plus the
// deployment amount ceiling. Every violated constraint is reported so the
// client sees all problems at once; no upstream call happens on failure.
func (s *Service) validateIntent(intent Intent) error {
	fields := map[string]string{}
	if err := s.validate.Struct(intent); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return common.NewAppError(common.CodeValidationFailed, "invalid request", http.StatusBadRequest, err)
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "Amount":
				fields["amount"] = "amount is required and must be greater than 0"
			case "Mobile":
				if fe.Tag() == "required" {
					fields["mobile"] = "mobile is required"
				} else {
					fields["mobile"] = "mobile must be a 10-digit number starting with 6-9"
				}
			case "Name":
				if fe.Tag() == "required" {
					fields["name"] = "name is required"
				} else {
					fields["name"] = "name must be between 2 and 50 characters"
				}
			}
		}
	}
	if _, seen := fields["amount"]; !seen && intent.Amount > s.AmountCeiling {
		fields["amount"] = fmt.Sprintf("amount must not exceed %.0f", s.AmountCeiling)
	}
	if _, seen := fields["name"]; !seen {
		trimmed := strings.TrimSpace(intent.Name)
		if runes := utf8.RuneCountInString(trimmed); runes < 2 || runes > 50 {
			fields["name"] = "name must be between 2 and 50 characters"
		}
	}
	if len(fields) == 0 {
		return nil
	}
	appErr := common.NewAppError(common.CodeValidationFailed, "request validation failed", http.StatusBadRequest, nil)
	for field, message := range fields {
		appErr.WithDetail(field, message)
	}
	return appErr
}
