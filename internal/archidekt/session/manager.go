// Package session owns the authentication lifecycle: credential and token
// state, auto-login, transparent refresh, and the retry wrapper around
// authorized operations.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/migellal/archidekt-client/internal/archidekt/api"
	"github.com/migellal/archidekt-client/internal/archidekt/credentials"
	"github.com/migellal/archidekt-client/internal/events"
)

// Manager is the single source of truth for authentication. It mirrors its
// in-memory token state to the credential store and recovers transparently
// from expired access tokens. Safe for concurrent use.
type Manager struct {
	client     *api.Client
	store      *credentials.Store
	dispatcher *events.Dispatcher

	mu           sync.Mutex
	state        AuthState
	accessToken  string
	refreshToken string
	user         *api.User
	rootFolderID int
}

// NewManager creates a session manager and restores any previous session
// from the credential store: a stored token restores Authenticated, a stored
// email/password pair without a token yields NeedsLogin, and an empty store
// yields NotAuthenticated. The dispatcher is optional.
func NewManager(ctx context.Context, client *api.Client, store *credentials.Store, dispatcher *events.Dispatcher) *Manager {
	m := &Manager{
		client:     client,
		store:      store,
		dispatcher: dispatcher,
		state:      StateLoading,
	}
	m.restore(ctx)
	return m
}

// restore loads persisted tokens and identity at startup.
func (m *Manager) restore(ctx context.Context) {
	accessToken, _ := m.store.Get(ctx, credentials.KeyAccessToken)
	refreshToken, _ := m.store.Get(ctx, credentials.KeyRefreshToken)
	userID, userIDErr := m.store.GetInt(ctx, credentials.KeyUserID)
	username, _ := m.store.Get(ctx, credentials.KeyUsername)
	rootFolderID, rootErr := m.store.GetInt(ctx, credentials.KeyRootFolderID)

	m.mu.Lock()
	m.accessToken = accessToken
	m.refreshToken = refreshToken
	if rootErr == nil {
		m.rootFolderID = rootFolderID
	}

	if accessToken != "" && userIDErr == nil && username != "" {
		m.user = &api.User{ID: userID, Username: username}
		m.mu.Unlock()
		m.setState(StateAuthenticated)
		return
	}
	m.mu.Unlock()

	if m.store.HasLoginCredentials(ctx) {
		m.setState(StateNeedsLogin)
	} else {
		m.setState(StateNotAuthenticated)
	}
}

// setState records a state transition and notifies observers.
func (m *Manager) setState(state AuthState) {
	m.mu.Lock()
	m.state = state
	username := ""
	if m.user != nil {
		username = m.user.Username
	}
	m.mu.Unlock()

	if m.dispatcher != nil {
		m.dispatcher.Dispatch(events.Event{
			Type: events.TypeAuthState,
			Data: events.AuthStateEvent{State: state.String(), Username: username},
		})
	}
}

// State returns the current authentication state.
func (m *Manager) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the logged-in user, or nil.
func (m *Manager) CurrentUser() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// AuthHeader returns the Authorization header value for the current access
// token, or "" when none is held.
func (m *Manager) AuthHeader() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.accessToken == "" {
		return ""
	}
	return "JWT " + m.accessToken
}

// AccessToken returns the raw access token, or "" when none is held.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

// RootFolderID returns the user's root folder id, or 0 when unknown.
func (m *Manager) RootFolderID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rootFolderID
}

// Login authenticates against the API. On success the tokens and user
// identity are held in memory, persisted to the store, and the state becomes
// Authenticated. Email and password are persisted only when persist is true.
func (m *Manager) Login(ctx context.Context, email, password string, persist bool) (*api.User, error) {
	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.setState(StateNotAuthenticated)
		if code := api.StatusCode(err); code != 0 {
			return nil, fmt.Errorf("%w: server rejected login (HTTP %d)", ErrInvalidCredentials, code)
		}
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	m.mu.Lock()
	m.accessToken = resp.AccessToken
	m.refreshToken = resp.RefreshToken
	user := resp.User
	m.user = &user
	if resp.User.RootFolder != nil {
		m.rootFolderID = *resp.User.RootFolder
	}
	m.mu.Unlock()

	if persist {
		if err := m.store.Set(ctx, credentials.KeyEmail, email); err != nil {
			log.Printf("failed to persist email: %v", err)
		}
		if err := m.store.Set(ctx, credentials.KeyPassword, password); err != nil {
			log.Printf("failed to persist password: %v", err)
		}
	}
	m.persistSession(ctx, resp)

	m.setState(StateAuthenticated)
	return m.CurrentUser(), nil
}

// persistSession mirrors tokens and identity to the credential store.
func (m *Manager) persistSession(ctx context.Context, resp *api.LoginResponse) {
	if err := m.store.Set(ctx, credentials.KeyAccessToken, resp.AccessToken); err != nil {
		log.Printf("failed to persist access token: %v", err)
	}
	if err := m.store.Set(ctx, credentials.KeyRefreshToken, resp.RefreshToken); err != nil {
		log.Printf("failed to persist refresh token: %v", err)
	}
	if err := m.store.SetInt(ctx, credentials.KeyUserID, resp.User.ID); err != nil {
		log.Printf("failed to persist user id: %v", err)
	}
	if err := m.store.Set(ctx, credentials.KeyUsername, resp.User.Username); err != nil {
		log.Printf("failed to persist username: %v", err)
	}
	if resp.User.RootFolder != nil {
		if err := m.store.SetInt(ctx, credentials.KeyRootFolderID, *resp.User.RootFolder); err != nil {
			log.Printf("failed to persist root folder id: %v", err)
		}
	}
}

// AutoLogin logs in with the stored email/password pair without
// re-persisting them. Fails with ErrNoStoredCredentials when none are held.
func (m *Manager) AutoLogin(ctx context.Context) (*api.User, error) {
	email, emailErr := m.store.Get(ctx, credentials.KeyEmail)
	password, passwordErr := m.store.Get(ctx, credentials.KeyPassword)
	if emailErr != nil || passwordErr != nil || email == "" || password == "" {
		return nil, ErrNoStoredCredentials
	}
	return m.Login(ctx, email, password, false)
}

// RefreshToken exchanges the held refresh token for a new access token. When
// the server rejects the refresh token it falls back to a silent auto-login;
// some deployments rotate refresh tokens out from under long-lived sessions
// and the stored password still works. Only when that also fails does the
// state drop to NeedsLogin.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	refreshToken := m.refreshToken
	m.mu.Unlock()

	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	resp, err := m.client.RefreshToken(ctx, refreshToken)
	if err == nil && resp.Token() != "" {
		token := resp.Token()
		m.mu.Lock()
		m.accessToken = token
		m.mu.Unlock()

		if err := m.store.Set(ctx, credentials.KeyAccessToken, token); err != nil {
			log.Printf("failed to persist refreshed access token: %v", err)
		}
		return token, nil
	}

	log.Printf("token refresh rejected, attempting silent re-login: %v", err)

	if _, loginErr := m.AutoLogin(ctx); loginErr == nil {
		return m.AccessToken(), nil
	}

	m.setState(StateNeedsLogin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return "", ErrRefreshFailed
}

// WithAuth runs op with the current Authorization header. If op fails with
// an HTTP 401, the token is refreshed and op is retried exactly once with
// the new header; a second 401 is surfaced as-is. Any non-401 failure is
// returned unchanged without touching the token.
func (m *Manager) WithAuth(ctx context.Context, op func(authHeader string) error) error {
	header := m.AuthHeader()
	if header == "" {
		return ErrNotAuthenticated
	}

	err := op(header)
	if err == nil || !api.IsUnauthorized(err) {
		return err
	}

	if _, refreshErr := m.RefreshToken(ctx); refreshErr != nil {
		return err
	}

	return op(m.AuthHeader())
}

// WithAuth runs op through the manager's single-retry contract and returns
// its result. It exists because methods cannot carry type parameters.
func WithAuth[T any](ctx context.Context, m *Manager, op func(authHeader string) (T, error)) (T, error) {
	var result T
	err := m.WithAuth(ctx, func(authHeader string) error {
		var opErr error
		result, opErr = op(authHeader)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Logout clears the in-memory session and removes persisted tokens and
// identity. The stored email/password pair is retained so auto-login keeps
// working; use ClearAllData to forget the device entirely.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.accessToken = ""
	m.refreshToken = ""
	m.user = nil
	m.mu.Unlock()

	err := m.store.Delete(ctx,
		credentials.KeyAccessToken,
		credentials.KeyRefreshToken,
		credentials.KeyUserID,
		credentials.KeyUsername,
	)

	m.setState(StateNotAuthenticated)
	if err != nil {
		return fmt.Errorf("failed to remove persisted session: %w", err)
	}
	return nil
}

// ClearAllData wipes every persisted and in-memory field, including the
// stored email/password pair.
func (m *Manager) ClearAllData(ctx context.Context) error {
	m.mu.Lock()
	m.accessToken = ""
	m.refreshToken = ""
	m.user = nil
	m.rootFolderID = 0
	m.mu.Unlock()

	err := m.store.Clear(ctx)

	m.setState(StateNotAuthenticated)
	if err != nil {
		return fmt.Errorf("failed to clear credential store: %w", err)
	}
	return nil
}
