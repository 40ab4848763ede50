package transport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     RegisterRequest
		wantMsg string
	}{
		{
			name:    "valid",
			req:     RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"},
			wantMsg: "",
		},
		{
			name:    "username too short",
			req:     RegisterRequest{Username: "al", Email: "a@x.com", Password: "secret1"},
			wantMsg: "username must be between 3 and 30 characters",
		},
		{
			name:    "username too long",
			req:     RegisterRequest{Username: strings.Repeat("a", 31), Email: "a@x.com", Password: "secret1"},
			wantMsg: "username must be between 3 and 30 characters",
		},
		{
			name:    "bad email",
			req:     RegisterRequest{Username: "alice", Email: "not-an-email", Password: "secret1"},
			wantMsg: "a valid email is required",
		},
		{
			name:    "short password",
			req:     RegisterRequest{Username: "alice", Email: "a@x.com", Password: "12345"},
			wantMsg: "password must be at least 6 characters",
		},
		{
			// First failing field wins when several are wrong.
			name:    "everything wrong",
			req:     RegisterRequest{Username: "", Email: "nope", Password: ""},
			wantMsg: "username must be between 3 and 30 characters",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantMsg, tt.req.Validate())
		})
	}
}

func TestRegisterRequest_Normalize(t *testing.T) {
	t.Parallel()

	req := RegisterRequest{Username: "  alice  ", Email: "  A@X.Com ", Password: "secret1"}
	req.Normalize()

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "a@x.com", req.Email)
}

func TestLoginRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     LoginRequest
		wantMsg string
	}{
		{name: "valid", req: LoginRequest{Email: "a@x.com", Password: "secret1"}, wantMsg: ""},
		{name: "bad email", req: LoginRequest{Email: "nope", Password: "secret1"}, wantMsg: "a valid email is required"},
		{name: "missing password", req: LoginRequest{Email: "a@x.com"}, wantMsg: "password is required"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantMsg, tt.req.Validate())
		})
	}
}
