package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required": "{field} is required",
		"notblank": "{field} cannot be blank",
		"gte":      "{field} must be greater than or equal to {param}",
		"lte":      "{field} must be less than or equal to {param}",
		"gt":       "{field} must be greater than {param}",
		"oneof":    "{field} must be one of {param}",
		"max":      "{field} must be at most {param}",
		"min":      "{field} must be at least {param}",
		"uuid":     "{field} must be a valid id",
		"date":     "{field} must be a date formatted as YYYY-MM-DD",
	}
)

// message flattens every validation error into one comma separated sentence.
func message(err error) string {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	msgs := make([]string, 0, len(valErrors))

	for _, valErr := range valErrors {
		errStr, ok := messages[valErr.Tag()]
		if !ok {
			msgs = append(msgs, valErr.Error())

			continue
		}

		errStr = strings.ReplaceAll(errStr, "{field}", valErr.Field())
		errStr = strings.ReplaceAll(errStr, "{param}", valErr.Param())

		msgs = append(msgs, errStr)
	}

	return strings.Join(msgs, ", ")
}
