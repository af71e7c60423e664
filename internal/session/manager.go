package session

import (
	"context"
	"sync"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/errors"
	"github.com/reserveja/reserveja-cli/internal/log"
)

// Manager owns the authenticated identity: it mediates login, logout and
// company switching, keeps the persisted snapshot in sync with in-memory
// state, and observes the API client's credential lifecycle so a rotated
// access token is persisted and an unrecoverable session is torn down.
type Manager struct {
	client *api.Client
	store  Store
	logger *log.Logger

	mu              sync.RWMutex
	user            *User
	tokens          *api.Tokens
	activeCompanyID string
	loading         bool
}

// NewManager creates a manager around the shared API client and a snapshot
// store. Call Restore before using it.
func NewManager(client *api.Client, store Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Manager{
		client:  client,
		store:   store,
		logger:  logger,
		loading: true,
	}
}

// Restore adopts the persisted snapshot, if any, and registers the
// credential lifecycle hooks. It never touches the network, completes
// synchronously, and clears the loading flag exactly once.
//
// A corrupt or structurally incomplete snapshot is logged and ignored;
// startup proceeds unauthenticated.
func (m *Manager) Restore() {
	snapshot, err := m.store.Load()
	if err != nil {
		m.logger.WithError(err).Warn("could not read stored session")
		snapshot = nil
	}

	if snapshot != nil && snapshot.Tokens.Valid() && snapshot.User.ID != "" {
		companyID := snapshot.ActiveCompanyID
		if companyID == "" && len(snapshot.User.Companies) > 0 {
			companyID = snapshot.User.Companies[0].ID
		}

		user := snapshot.User
		tokens := snapshot.Tokens

		m.mu.Lock()
		m.user = &user
		m.tokens = &tokens
		m.activeCompanyID = companyID
		m.mu.Unlock()

		// The hooks are registered below, so seeding the client here does
		// not echo a redundant persistence write.
		m.client.SetTokens(&tokens)
		m.client.SetCompanyID(companyID)

		m.logger.Debug("session restored", "user_id", user.ID, "company_id", companyID)
	}

	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()

	m.client.SetHooks(m.handleTokenChange, m.handleUnauthorized)
}

// Login authenticates against the backend. The response must carry both
// tokens; otherwise an incomplete-authentication error is returned and no
// state is mutated. On success the normalized user is returned immediately
// so callers can act on it (role-based dispatch) without re-reading state.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	result, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !result.Tokens.Valid() {
		return nil, errors.NewAuthIncompleteError()
	}

	user, err := DecodeUser(result.User)
	if err != nil {
		return nil, err
	}

	companyID := ""
	if len(user.Companies) > 0 {
		companyID = user.Companies[0].ID
	}

	tokens := *result.Tokens

	m.mu.Lock()
	m.user = user
	m.tokens = &tokens
	m.activeCompanyID = companyID
	m.mu.Unlock()

	m.client.SetTokens(&tokens)
	m.client.SetCompanyID(companyID)

	m.persist()

	m.logger.Info("logged in", "user_id", user.ID, "company_id", companyID)
	return user, nil
}

// Logout tears the session down. The backend is notified on a best-effort
// basis; a failed notification is logged and never blocks the local logout.
// Calling Logout while unauthenticated is a no-op beyond redundant clearing.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	refreshToken := ""
	if m.tokens != nil {
		refreshToken = m.tokens.RefreshToken
	}
	m.mu.RUnlock()

	if refreshToken != "" {
		if err := m.client.Logout(ctx, refreshToken); err != nil {
			m.logger.WithError(err).Warn("could not notify backend about logout")
		}
	}

	// Clearing the client's credentials first makes logout terminal: a
	// refresh completing afterwards observes no pair and stays a no-op.
	m.client.SetTokens(nil)
	m.clearLocal()
}

// SetActiveCompany switches the company scope for subsequent requests and
// rewrites the snapshot. Membership is not validated here; callers only
// offer ids from Companies().
func (m *Manager) SetActiveCompany(companyID string) {
	m.mu.Lock()
	m.activeCompanyID = companyID
	m.mu.Unlock()

	m.client.SetCompanyID(companyID)
	m.persist()
}

// User returns the authenticated user, or nil.
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Companies returns the user's memberships.
func (m *Manager) Companies() []CompanyMembership {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	return m.user.Companies
}

// GlobalRole returns the cross-tenant role, or the empty value.
func (m *Manager) GlobalRole() GlobalRole {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.GlobalRole
}

// CompanyID returns the active company id, or the empty string.
func (m *Manager) CompanyID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeCompanyID
}

// CompanyRole returns the effective role within the active company, or the
// empty value when no company is active or the id is not a membership.
func (m *Manager) CompanyRole() CompanyRole {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if membership := m.user.Membership(m.activeCompanyID); membership != nil {
		return membership.Role
	}
	return ""
}

// IsAuthenticated reports whether a user and a usable access token are held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.tokens != nil && m.tokens.AccessToken != ""
}

// IsLoading reports whether Restore has not completed yet.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// handleTokenChange fires on every credential change in the API client.
// An empty pair means the client gave up on the session; a rotated pair is
// persisted against the latest known user and company, never a stale one.
func (m *Manager) handleTokenChange(next *api.Tokens) {
	if next == nil || next.AccessToken == "" {
		m.clearLocal()
		return
	}

	m.mu.Lock()
	if m.user == nil {
		// A rotation landing after logout must not resurrect the session.
		m.mu.Unlock()
		return
	}
	tokens := *next
	m.tokens = &tokens
	m.mu.Unlock()

	m.persist()
}

// handleUnauthorized fires when the client exhausts the refresh protocol.
func (m *Manager) handleUnauthorized() {
	m.clearLocal()
}

// clearLocal wipes in-memory state, the client's company scope and the
// persisted snapshot. It deliberately leaves the client's credential state
// alone: whoever triggered the clear has already decided its fate.
func (m *Manager) clearLocal() {
	m.mu.Lock()
	m.user = nil
	m.tokens = nil
	m.activeCompanyID = ""
	m.loading = false
	m.mu.Unlock()

	m.client.SetCompanyID("")
	if err := m.store.Clear(); err != nil {
		m.logger.WithError(err).Warn("could not clear stored session")
	}
}

// persist rewrites the snapshot from current state. Skipped while
// unauthenticated so a cleared session can never be re-persisted.
func (m *Manager) persist() {
	m.mu.RLock()
	if m.user == nil || m.tokens == nil {
		m.mu.RUnlock()
		return
	}
	snapshot := &Snapshot{
		User:            *m.user,
		Tokens:          *m.tokens,
		ActiveCompanyID: m.activeCompanyID,
	}
	m.mu.RUnlock()

	if err := m.store.Save(snapshot); err != nil {
		m.logger.WithError(err).Warn("could not persist session")
	}
}
