package session

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/errors"
)

// newTestServer starts an HTTP server bound to IPv4-only loopback so tests work
// inside restricted sandboxes that forbid IPv6 listeners.
func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("unable to start test server: %v", err)
	}

	server := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	server.Start()
	t.Cleanup(server.Close)
	return server
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

const loginResponse = `{
	"accessToken": "at-1",
	"refreshToken": "rt-1",
	"user": {
		"id": "u-1",
		"name": "Ana",
		"email": "ana@example.com",
		"companies": [
			{"id": "c-1", "name": "Studio Bela", "role": "ADMIN"},
			{"id": "c-2", "name": "Clínica Sol", "role": "profissional"}
		]
	}
}`

func testSnapshot() *Snapshot {
	return &Snapshot{
		User: User{
			ID:    "u-1",
			Name:  "Ana",
			Email: "ana@example.com",
			Companies: []CompanyMembership{
				{ID: "c-1", Name: "Studio Bela", Role: RoleAdmin},
				{ID: "c-2", Name: "Clínica Sol", Role: RoleProfessional},
			},
		},
		Tokens:          api.Tokens{AccessToken: "at-1", RefreshToken: "rt-1"},
		ActiveCompanyID: "c-2",
	}
}

func TestManagerLogin(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(loginResponse))
	}))

	client := api.NewClient(server.URL)
	store := NewMemoryStore()
	manager := NewManager(client, store, nil)
	manager.Restore()

	user, err := manager.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "u-1", user.ID)
	assert.True(t, manager.IsAuthenticated())

	// The first membership becomes the active company.
	assert.Equal(t, "c-1", manager.CompanyID())
	assert.Equal(t, RoleAdmin, manager.CompanyRole())

	// The client was seeded for subsequent requests.
	tokens := client.Tokens()
	require.NotNil(t, tokens)
	assert.Equal(t, "at-1", tokens.AccessToken)
	assert.Equal(t, "c-1", client.CompanyID())

	// The snapshot was written with the full state.
	snapshot, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "u-1", snapshot.User.ID)
	assert.Equal(t, "c-1", snapshot.ActiveCompanyID)
	assert.Equal(t, "rt-1", snapshot.Tokens.RefreshToken)
}

func TestManagerLogin_IncompleteResponse(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No refresh token: the session must not be adopted.
		writeJSON(w, http.StatusOK, map[string]any{
			"accessToken": "at-1",
			"user":        map[string]string{"id": "u-1"},
		})
	}))

	client := api.NewClient(server.URL)
	store := NewMemoryStore()
	manager := NewManager(client, store, nil)
	manager.Restore()

	user, err := manager.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.Nil(t, user)

	var consoleErr *errors.ConsoleError
	require.ErrorAs(t, err, &consoleErr)
	assert.Equal(t, errors.ErrCodeAuthIncomplete, consoleErr.Code)

	// Nothing was mutated anywhere.
	assert.False(t, manager.IsAuthenticated())
	assert.Nil(t, client.Tokens())
	snapshot, _ := store.Load()
	assert.Nil(t, snapshot)
}

func TestManagerLogin_BadCredentials(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
	}))

	client := api.NewClient(server.URL)
	manager := NewManager(client, NewMemoryStore(), nil)
	manager.Restore()

	_, err := manager.Login(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, manager.IsAuthenticated())
}

func TestManagerRestore(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:0")
	store := NewMemoryStore()
	require.NoError(t, store.Save(testSnapshot()))

	manager := NewManager(client, store, nil)
	assert.True(t, manager.IsLoading())

	manager.Restore()

	assert.False(t, manager.IsLoading())
	assert.True(t, manager.IsAuthenticated())
	assert.Equal(t, "c-2", manager.CompanyID())
	assert.Equal(t, RoleProfessional, manager.CompanyRole())

	tokens := client.Tokens()
	require.NotNil(t, tokens)
	assert.Equal(t, "at-1", tokens.AccessToken)
	assert.Equal(t, "c-2", client.CompanyID())

	// Restoring does not rewrite the snapshot.
	snapshot, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, testSnapshot(), snapshot)
}

func TestManagerRestore_DefaultsToFirstCompany(t *testing.T) {
	store := NewMemoryStore()
	snapshot := testSnapshot()
	snapshot.ActiveCompanyID = ""
	require.NoError(t, store.Save(snapshot))

	manager := NewManager(api.NewClient("http://127.0.0.1:0"), store, nil)
	manager.Restore()

	assert.Equal(t, "c-1", manager.CompanyID())
}

func TestManagerRestore_EmptyStore(t *testing.T) {
	manager := NewManager(api.NewClient("http://127.0.0.1:0"), NewMemoryStore(), nil)
	manager.Restore()

	assert.False(t, manager.IsLoading())
	assert.False(t, manager.IsAuthenticated())
	assert.Empty(t, manager.CompanyID())
	assert.Nil(t, manager.User())
}

func TestManagerRestore_IncompleteSnapshot(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"missing access token", func(s *Snapshot) { s.Tokens.AccessToken = "" }},
		{"missing refresh token", func(s *Snapshot) { s.Tokens.RefreshToken = "" }},
		{"missing user", func(s *Snapshot) { s.User = User{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			snapshot := testSnapshot()
			tt.mutate(snapshot)
			require.NoError(t, store.Save(snapshot))

			manager := NewManager(api.NewClient("http://127.0.0.1:0"), store, nil)
			manager.Restore()

			assert.False(t, manager.IsLoading())
			assert.False(t, manager.IsAuthenticated())
		})
	}
}

func TestManagerLogout(t *testing.T) {
	var logoutBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(loginResponse))
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&logoutBody)
		w.WriteHeader(http.StatusNoContent)
	})
	server := newTestServer(t, mux)

	client := api.NewClient(server.URL)
	store := NewMemoryStore()
	manager := NewManager(client, store, nil)
	manager.Restore()

	_, err := manager.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	manager.Logout(context.Background())

	assert.Equal(t, "rt-1", logoutBody["refreshToken"])
	assert.False(t, manager.IsAuthenticated())
	assert.Nil(t, manager.User())
	assert.Empty(t, manager.CompanyID())
	assert.Nil(t, client.Tokens())
	assert.Empty(t, client.CompanyID())

	snapshot, _ := store.Load()
	assert.Nil(t, snapshot)
}

func TestManagerLogout_IsTerminal(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(loginResponse))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	client := api.NewClient(server.URL)
	store := NewMemoryStore()
	manager := NewManager(client, store, nil)
	manager.Restore()

	_, err := manager.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	manager.Logout(context.Background())

	// A token rotation landing after logout must not resurrect the session.
	client.SetTokens(&api.Tokens{AccessToken: "at-late", RefreshToken: "rt-late"})

	assert.False(t, manager.IsAuthenticated())
	snapshot, _ := store.Load()
	assert.Nil(t, snapshot)
}

func TestManagerLogout_NotifyFailureStillClears(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(loginResponse))
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "revocation store down"})
	})
	server := newTestServer(t, mux)

	client := api.NewClient(server.URL)
	store := NewMemoryStore()
	manager := NewManager(client, store, nil)
	manager.Restore()

	_, err := manager.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	manager.Logout(context.Background())

	assert.False(t, manager.IsAuthenticated())
	assert.Nil(t, client.Tokens())
	snapshot, _ := store.Load()
	assert.Nil(t, snapshot)
}

func TestManagerSetActiveCompany(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:0")
	store := NewMemoryStore()
	require.NoError(t, store.Save(testSnapshot()))

	manager := NewManager(client, store, nil)
	manager.Restore()

	manager.SetActiveCompany("c-1")

	assert.Equal(t, "c-1", manager.CompanyID())
	assert.Equal(t, RoleAdmin, manager.CompanyRole())
	assert.Equal(t, "c-1", client.CompanyID())

	snapshot, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "c-1", snapshot.ActiveCompanyID)
}

func TestManagerPersistsRotatedTokens(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:0")
	store := NewMemoryStore()
	require.NoError(t, store.Save(testSnapshot()))

	manager := NewManager(client, store, nil)
	manager.Restore()
	manager.SetActiveCompany("c-1")

	// A refresh cycle rotates the pair; the manager observes it via the hook.
	client.SetTokens(&api.Tokens{AccessToken: "at-2", RefreshToken: "rt-2"})

	assert.True(t, manager.IsAuthenticated())

	snapshot, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "at-2", snapshot.Tokens.AccessToken)
	assert.Equal(t, "rt-2", snapshot.Tokens.RefreshToken)

	// The rest of the state rides along untouched.
	assert.Equal(t, "u-1", snapshot.User.ID)
	assert.Equal(t, "c-1", snapshot.ActiveCompanyID)
}

func TestManagerUnauthorizedTeardown(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token revoked"})
	})
	mux.HandleFunc("/companies/c-2/appointments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
	})
	server := newTestServer(t, mux)

	client := api.NewClient(server.URL)
	store := NewMemoryStore()
	require.NoError(t, store.Save(testSnapshot()))

	manager := NewManager(client, store, nil)
	manager.Restore()
	require.True(t, manager.IsAuthenticated())

	_, err := client.ListAppointments(context.Background(), "c-2", api.AppointmentFilter{})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, int32(1), refreshCalls.Load())

	// The failed refresh tore the whole session down.
	assert.False(t, manager.IsAuthenticated())
	assert.Nil(t, manager.User())
	assert.Nil(t, client.Tokens())
	snapshot, _ := store.Load()
	assert.Nil(t, snapshot)
}
