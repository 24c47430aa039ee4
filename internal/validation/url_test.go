package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		valid   bool
		message string
	}{
		{name: "https", input: "https://example.com/tasks/1.pdf", valid: true},
		{name: "http with port", input: "http://localhost:8080/files?id=3", valid: true},
		{name: "empty", input: "", message: MessageURLRequired},
		{name: "whitespace", input: "   ", message: MessageURLRequired},
		{name: "no scheme", input: "example.com/file.pdf", message: MessageURLInvalid},
		{name: "garbage", input: "not a url", message: MessageURLInvalid},
		{name: "ftp", input: "ftp://example.com/file.pdf", message: MessageURLScheme},
		{name: "mailto", input: "mailto:lecturer@example.com", message: MessageURLInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateURL(tc.input)
			require.Equal(t, tc.valid, result.Valid)
			require.Equal(t, tc.message, result.Message)
		})
	}
}

func TestNewReportsJSONFieldNames(t *testing.T) {
	type payload struct {
		TopicName string `json:"topicName" validate:"required"`
	}

	err := New().Struct(payload{})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
	require.Equal(t, "topicName", validationErrors[0].Field())
}
