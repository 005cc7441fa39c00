package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob@example.com  ", "bob@example.com"},
		{" Carol.Smith@Mail.Example.org ", "carol.smith@mail.example.org"},
		{"already@lower.com", "already@lower.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in), "input %q", tt.in)
	}
}
