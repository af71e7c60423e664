package exitcode

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: Success,
		},
		{
			name: "unauthorized response",
			err:  &api.APIError{Status: http.StatusUnauthorized, Message: "token expired"},
			want: AuthError,
		},
		{
			name: "forbidden response",
			err:  &api.APIError{Status: http.StatusForbidden, Message: "nope"},
			want: AuthError,
		},
		{
			name: "wrapped unauthorized response",
			err:  fmt.Errorf("listing appointments: %w", &api.APIError{Status: http.StatusUnauthorized}),
			want: AuthError,
		},
		{
			name: "not logged in",
			err:  errors.NewAuthRequiredError(),
			want: AuthError,
		},
		{
			name: "connection refused",
			err:  fmt.Errorf("dial tcp 127.0.0.1:3000: connection refused"),
			want: NetworkError,
		},
		{
			name: "unknown host",
			err:  fmt.Errorf("lookup api.reserveja.example: no such host"),
			want: NetworkError,
		},
		{
			name: "timeout",
			err:  fmt.Errorf("request timeout exceeded"),
			want: NetworkError,
		},
		{
			name: "missing required flag",
			err:  fmt.Errorf(`required flag(s) "name" not set`),
			want: UsageError,
		},
		{
			name: "unknown command",
			err:  fmt.Errorf(`unknown command "agendamento" for "reserveja"`),
			want: UsageError,
		},
		{
			name: "server error",
			err:  &api.APIError{Status: http.StatusInternalServerError, Message: "boom"},
			want: GeneralError,
		},
		{
			name: "generic error",
			err:  fmt.Errorf("something broke"),
			want: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
