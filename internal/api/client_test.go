package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func tokenBody(access, refresh string) map[string]string {
	return map[string]string{"accessToken": access, "refreshToken": refresh}
}

func TestClientDo_SetsAuthHeaders(t *testing.T) {
	var got http.Header
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, map[string]string{"ok": "true"})
	}))

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1", RefreshToken: "rt-1"})
	client.SetCompanyID("company-1")

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer at-1", got.Get("Authorization"))
	assert.Equal(t, "company-1", got.Get("X-Company-Id"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))

	// A per-request company takes precedence over the client-wide one.
	err = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping", CompanyID: "company-2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "company-2", got.Get("X-Company-Id"))
}

func TestClientDo_SkipAuthOmitsCredentials(t *testing.T) {
	var got http.Header
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, map[string]string{})
	}))

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1", RefreshToken: "rt-1"})
	client.SetCompanyID("company-1")

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/public", SkipAuth: true}, nil)
	require.NoError(t, err)

	assert.Empty(t, got.Get("Authorization"))
	assert.Empty(t, got.Get("X-Company-Id"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))
}

func TestClientDo_JSONBody(t *testing.T) {
	var contentType string
	var body []byte
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		writeJSON(w, http.StatusCreated, map[string]string{"id": "new-1"})
	}))

	client := NewClient(server.URL)

	var out struct {
		ID string `json:"id"`
	}
	err := client.Do(context.Background(), Request{
		Method:   http.MethodPost,
		Path:     "/things",
		Body:     map[string]string{"name": "thing"},
		SkipAuth: true,
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.JSONEq(t, `{"name":"thing"}`, string(body))
	assert.Equal(t, "new-1", out.ID)
}

func TestClientDo_ErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		message string
	}{
		{
			name: "message from body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "slot already booked"})
			},
			status:  http.StatusUnprocessableEntity,
			message: "slot already booked",
		},
		{
			name: "fallback to status text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			status:  http.StatusInternalServerError,
			message: "Internal Server Error",
		},
		{
			name: "unparseable body falls back",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("{not json"))
			},
			status:  http.StatusBadRequest,
			message: "Bad Request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.handler)
			client := NewClient(server.URL)

			err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", SkipAuth: true}, nil)
			require.Error(t, err)

			assert.True(t, IsStatus(err, tt.status))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestClientDo_NonJSONResponse(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	}))

	client := NewClient(server.URL)

	var out map[string]string
	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping", SkipAuth: true}, &out)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestClientDo_RefreshAndRetryOnce(t *testing.T) {
	var endpointCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refreshToken"] != "rt-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unknown refresh token"})
			return
		}
		writeJSON(w, http.StatusOK, tokenBody("at-2", "rt-2"))
	})
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		endpointCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer at-2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"data": "secret"})
	})
	server := newTestServer(t, mux)

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1", RefreshToken: "rt-1"})

	var observed []*Tokens
	client.SetHooks(func(tokens *Tokens) {
		observed = append(observed, tokens)
	}, nil)

	var out struct {
		Data string `json:"data"`
	}
	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/protected"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "secret", out.Data)
	assert.Equal(t, int32(2), endpointCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())

	tokens := client.Tokens()
	require.NotNil(t, tokens)
	assert.Equal(t, "at-2", tokens.AccessToken)
	assert.Equal(t, "rt-2", tokens.RefreshToken)

	// The rotation was announced exactly once, with the new pair.
	require.Len(t, observed, 1)
	assert.Equal(t, "at-2", observed[0].AccessToken)
}

func TestClientDo_RetryResendsIdenticalBody(t *testing.T) {
	var bodies [][]byte
	var contentTypes []string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody("at-2", "rt-2"))
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, body)
		contentTypes = append(contentTypes, r.Header.Get("Content-Type"))
		if r.Header.Get("Authorization") != "Bearer at-2" {
			writeJSON(w, http.StatusUnauthorized, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	server := newTestServer(t, mux)

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1", RefreshToken: "rt-1"})

	payload := []byte("opaque-payload-bytes")
	err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/upload",
		Body:   bytes.NewReader(payload),
	}, nil)
	require.NoError(t, err)

	// The reader was drained once; the retry resent the same bytes.
	require.Len(t, bodies, 2)
	assert.Equal(t, payload, bodies[0])
	assert.Equal(t, payload, bodies[1])

	// Opaque bodies never get a JSON content type.
	assert.Empty(t, contentTypes[0])
	assert.Empty(t, contentTypes[1])
}

func TestClientDo_RefreshFailureReturnsOriginalError(t *testing.T) {
	var endpointCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token revoked"})
	})
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		endpointCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
	})
	server := newTestServer(t, mux)

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1", RefreshToken: "rt-1"})

	var unauthorized atomic.Int32
	client.SetHooks(nil, func() {
		unauthorized.Add(1)
	})

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/protected"}, nil)
	require.Error(t, err)

	// The original 401 propagates, not the refresh failure.
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "token expired", apiErr.Message)

	// No retry happened and the client de-authenticated itself.
	assert.Equal(t, int32(1), endpointCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Nil(t, client.Tokens())
	assert.Equal(t, int32(1), unauthorized.Load())
}

func TestClientDo_SecondUnauthorizedPropagates(t *testing.T) {
	var endpointCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, tokenBody("at-2", "rt-2"))
	})
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		endpointCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "still not allowed"})
	})
	server := newTestServer(t, mux)

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1", RefreshToken: "rt-1"})

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/protected"}, nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	// Exactly one refresh and one retry, never a loop.
	assert.Equal(t, int32(2), endpointCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestClientDo_NoRefreshWithoutRefreshToken(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, tokenBody("at-2", "rt-2"))
	})
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, nil)
	})
	server := newTestServer(t, mux)

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1"})

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/protected"}, nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(0), refreshCalls.Load())
}

func TestClientDo_SkipAuthNeverRefreshes(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, tokenBody("at-2", "rt-2"))
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "wrong password"})
	})
	server := newTestServer(t, mux)

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1", RefreshToken: "rt-1"})

	err := client.Do(context.Background(), Request{
		Method:   http.MethodPost,
		Path:     "/auth/login",
		Body:     map[string]string{"email": "a@b.c", "password": "nope"},
		SkipAuth: true,
	}, nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(0), refreshCalls.Load())

	// The held pair survives: a failed unauthenticated call is not a session event.
	require.NotNil(t, client.Tokens())
}

func TestClientDo_CanceledRequestNeverRefreshes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, tokenBody("at-2", "rt-2"))
	})
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		cancel()
		writeJSON(w, http.StatusUnauthorized, nil)
	})
	server := newTestServer(t, mux)

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1", RefreshToken: "rt-1"})

	err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/protected"}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(0), refreshCalls.Load())
}

func TestClientDo_ConcurrentRequestsShareOneRefresh(t *testing.T) {
	const workers = 8

	var refreshCalls atomic.Int32
	var firstAttempts sync.WaitGroup
	firstAttempts.Add(workers)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refreshToken"] != "rt-1" {
			// A second redemption would arrive with the rotated token and fail,
			// which is exactly what sharing the in-flight refresh prevents.
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token already used"})
			return
		}
		// Hold the refresh until every worker has seen its 401, so all of
		// them are waiting on this one redemption.
		firstAttempts.Wait()
		time.Sleep(50 * time.Millisecond)
		writeJSON(w, http.StatusOK, tokenBody("at-2", "rt-2"))
	})
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-2" {
			writeJSON(w, http.StatusUnauthorized, nil)
			firstAttempts.Done()
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"data": "ok"})
	})
	server := newTestServer(t, mux)

	client := NewClient(server.URL)
	client.SetTokens(&Tokens{AccessToken: "at-1", RefreshToken: "rt-1"})

	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			errs <- client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/protected"}, nil)
		}()
	}

	for i := 0; i < workers; i++ {
		assert.NoError(t, <-errs)
	}
	assert.Equal(t, int32(1), refreshCalls.Load())

	tokens := client.Tokens()
	require.NotNil(t, tokens)
	assert.Equal(t, "at-2", tokens.AccessToken)
}
