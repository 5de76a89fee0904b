package service

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/openbge-client/internal/domain"
)

// Input limits
const (
	MaxNumbers     = 1000
	MaxSearchLimit = 100
)

var (
	numberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
	rsidPattern   = regexp.MustCompile(`^rs[0-9]+$`)
)

var numberRules = []validation.Rule{
	validation.Required,
	validation.Length(1, 64),
	validation.Match(numberPattern).Error("must contain only letters, digits, '-' or '_'"),
}

func validateNumbers(numbers []string) error {
	return toValidationError("numbers", numbers, validation.Validate(numbers,
		validation.Length(0, MaxNumbers),
		validation.Each(numberRules...),
	))
}

func validateNumber(number string) error {
	return toValidationError("number", number, validation.Validate(number, numberRules...))
}

func validateConditions(conditions []domain.SurveyCondition) error {
	for i := range conditions {
		c := &conditions[i]
		err := validation.ValidateStruct(c,
			validation.Field(&c.UserID, validation.Required),
			validation.Field(&c.Number, numberRules...),
			validation.Field(&c.SurveyID, validation.Required, validation.Min(int64(1))),
		)
		if err != nil {
			return toValidationError(fmt.Sprintf("conditions[%d]", i), *c, err)
		}
	}
	return nil
}

func validateSMS(phone, template string) error {
	if err := validation.Validate(phone,
		validation.Required,
		validation.Match(phonePattern).Error("must be a phone number"),
	); err != nil {
		return toValidationError("phone", phone, err)
	}
	return toValidationError("template", template, validation.Validate(template, validation.Required))
}

func validateVariants(number string, rsids []string) error {
	if err := validateNumber(number); err != nil {
		return err
	}
	return toValidationError("rsids", rsids, validation.Validate(rsids,
		validation.Required,
		validation.Each(validation.Required, validation.Match(rsidPattern).Error("must be an RS identifier")),
	))
}

func validateSearch(req domain.SearchRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Number, numberRules...),
		validation.Field(&req.Query, validation.Required, validation.Length(1, 256)),
		validation.Field(&req.Scopes, validation.Each(validation.Required)),
		validation.Field(&req.Page, validation.Min(0)),
		validation.Field(&req.Limit, validation.Min(0), validation.Max(MaxSearchLimit)),
	)
	return toValidationError("request", req, err)
}

// toValidationError converts an ozzo error into a *domain.ValidationError.
// Struct errors report the first offending field in name order.
func toValidationError(field string, value interface{}, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		keys := make([]string, 0, len(fieldErrs))
		for k := range fieldErrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		name := keys[0]
		if field != "request" {
			name = field + "." + name
		}
		return domain.NewValidationError(name, fieldErrs[keys[0]].Error(), value)
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return fmt.Errorf("failed to validate %s: %w", field, err)
	}

	return domain.NewValidationError(field, err.Error(), value)
}
