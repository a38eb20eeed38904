package agent

import "fmt"

type payloadError struct {
	field  string
	value  string
	reason string
}

func (e *payloadError) Error() string {
	if e.value == "" {
		return fmt.Sprintf("model output: %s %s", e.field, e.reason)
	}
	return fmt.Sprintf("model output: %s %q %s", e.field, e.value, e.reason)
}

func errMissingField(field string) error {
	return &payloadError{field: field, reason: "is missing"}
}

func errInvalidValue(field, value string) error {
	return &payloadError{field: field, value: value, reason: "is not allowed"}
}
