package exitcode_test

import (
	"testing"

	"taskdeck/internal/exitcode"
)

func TestName(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{exitcode.Success, "success"},
		{exitcode.UserError, "user_error"},
		{exitcode.AuthError, "auth_error"},
		{exitcode.BackendError, "backend_error"},
		{42, "unknown"},
	}
	for _, tt := range tests {
		if got := exitcode.Name(tt.code); got != tt.want {
			t.Errorf("Name(%d): expected %q, got %q", tt.code, tt.want, got)
		}
	}
}
