package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendEmailInputValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   SendEmailInput
		wantErr bool
	}{
		{"valid", SendEmailInput{To: "user@example.com", Subject: "s", Body: "b"}, false},
		{"empty to", SendEmailInput{Subject: "s", Body: "b"}, true},
		{"empty subject", SendEmailInput{To: "user@example.com", Body: "b"}, true},
		{"empty body", SendEmailInput{To: "user@example.com", Subject: "s"}, true},
		{"bad address", SendEmailInput{To: "not-an-email", Subject: "s", Body: "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsEmailValid(t *testing.T) {
	t.Parallel()

	assert.True(t, IsEmailValid("user@example.com"))
	assert.True(t, IsEmailValid("first.last+tag@sub.example.co"))
	assert.False(t, IsEmailValid("user@"))
	assert.False(t, IsEmailValid("@example.com"))
	assert.False(t, IsEmailValid("user example.com"))
}
