package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LoginErrorMessage is the recoverable, user-visible message recorded when
// credentials do not match any directory record.
const LoginErrorMessage = "Invalid username or password"

// IdentityStore owns the current-session projection. Its state machine is
// Unauthenticated -> Authenticated -> Unauthenticated, with the loading
// flag marking an in-flight login. Concurrent login attempts are not
// coalesced: each resolves independently and the last write wins.
type IdentityStore struct {
	logger     *zap.Logger
	dispatcher Dispatcher
	directory  Directory
	storage    SessionStorage

	mu      sync.Mutex
	current *Session
	loading bool
	errMsg  string
}

// NewIdentityStore builds the store and rehydrates any session persisted
// by a previous process, best-effort.
func NewIdentityStore(logger *zap.Logger, dispatcher Dispatcher, directory Directory, storage SessionStorage) *IdentityStore {
	s := &IdentityStore{
		logger:     logger,
		dispatcher: dispatcher,
		directory:  directory,
		storage:    storage,
	}
	if sess, ok := storage.LoadSession(context.Background()); ok {
		s.current = &sess
		logger.Info("identity: session restored", zap.Int("user.id", sess.ID), zap.String("user.role", string(sess.Role)))
	}
	return s
}

// Login resolves asynchronously against the credential directory. On match
// the session becomes the credential-stripped projection of the record and
// is persisted; on mismatch the session is untouched and an error message
// is recorded for display.
func (s *IdentityStore) Login(ctx context.Context, username, password string) <-chan struct{} {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	return s.dispatcher.Dispatch(ctx, "identity.login", func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		defer func() { s.loading = false }()

		user, ok := s.directory.Lookup(username, password)
		if !ok {
			s.errMsg = LoginErrorMessage
			s.logger.Info("identity: login rejected", zap.String("username", username))
			return
		}
		sess := NewSession(user)
		s.current = &sess
		if err := s.storage.SaveSession(context.Background(), sess); err != nil {
			s.logger.Warn("identity: failed to persist session", zap.Error(err))
		}
		s.logger.Info("identity: login succeeded", zap.Int("user.id", sess.ID), zap.String("user.role", string(sess.Role)))
	})
}

// Logout clears the session and its durable copy synchronously.
func (s *IdentityStore) Logout() {
	s.mu.Lock()
	s.current = nil
	s.errMsg = ""
	s.mu.Unlock()
	if err := s.storage.ClearSession(context.Background()); err != nil {
		s.logger.Warn("identity: failed to clear persisted session", zap.Error(err))
	}
	s.logger.Info("identity: logged out")
}

// Current returns the authenticated principal, if any.
func (s *IdentityStore) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

func (s *IdentityStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func (s *IdentityStore) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.Role == RoleAdmin
}

// Loading reports whether a login attempt is in flight.
func (s *IdentityStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Error returns the last recorded login failure message, empty when none.
func (s *IdentityStore) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}
