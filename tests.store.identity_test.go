package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Ensures a login against the real bcrypt-backed directory resolves to a
// credential-stripped session that is also the one persisted durably.
func TestLogin(t *testing.T) {
	dir, err := NewDirectory(SeedUsers())
	require.NoError(t, err)
	storage := &MockStorage{}
	s := NewIdentityStore(zap.NewNop(), NewImmediateDispatcher(), dir, storage)

	<-s.Login(context.Background(), "user1", "user123")

	require.True(t, s.IsAuthenticated())
	assert.False(t, s.IsAdmin())
	assert.False(t, s.Loading())
	assert.Empty(t, s.Error())

	sess, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 2, sess.ID)
	assert.Equal(t, "user1", sess.Username)
	assert.Equal(t, RoleUser, sess.Role)
	assert.Empty(t, sess.Password)

	require.NotNil(t, storage.Session)
	assert.Equal(t, sess, *storage.Session)
	assert.Empty(t, storage.Session.Password)
}

// Ensures the admin seed account carries the admin role through the session.
func TestLogin_Admin(t *testing.T) {
	dir, err := NewDirectory(SeedUsers())
	require.NoError(t, err)
	s := NewIdentityStore(zap.NewNop(), NewImmediateDispatcher(), dir, &MockStorage{})

	<-s.Login(context.Background(), "admin", "admin123")

	assert.True(t, s.IsAdmin())
}

// Ensures a rejected login records the recoverable message and leaves the
// session untouched.
func TestLogin_BadCredentials(t *testing.T) {
	dir, err := NewDirectory(SeedUsers())
	require.NoError(t, err)
	storage := &MockStorage{}
	s := NewIdentityStore(zap.NewNop(), NewImmediateDispatcher(), dir, storage)

	<-s.Login(context.Background(), "user1", "wrong")

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, LoginErrorMessage, s.Error())
	assert.Nil(t, storage.Session)
}

// Ensures a fresh login attempt clears the previous failure message.
func TestLogin_ErrorResetOnRetry(t *testing.T) {
	s := NewIdentityStore(zap.NewNop(), NewImmediateDispatcher(), &MockDirectory{Users: testUsers}, &MockStorage{})

	<-s.Login(context.Background(), "user7", "wrong")
	require.Equal(t, LoginErrorMessage, s.Error())

	<-s.Login(context.Background(), "user7", "pw7")

	assert.Empty(t, s.Error())
	assert.True(t, s.IsAuthenticated())
}

// Ensures the loading flag covers exactly the in-flight window of a login.
func TestLogin_LoadingWindow(t *testing.T) {
	dispatcher := NewLatencyDispatcher(zap.NewNop(), NewMockClocker(), NewIDsHandler(), 10*time.Millisecond)
	s := NewIdentityStore(zap.NewNop(), dispatcher, &MockDirectory{Users: testUsers}, &MockStorage{})

	done := s.Login(context.Background(), "user7", "pw7")
	assert.True(t, s.Loading())
	assert.False(t, s.IsAuthenticated())

	<-done
	assert.False(t, s.Loading())
	assert.True(t, s.IsAuthenticated())
}

// Ensures logout clears both the live session and the durable copy.
func TestLogout(t *testing.T) {
	storage := &MockStorage{}
	s := NewIdentityStore(zap.NewNop(), NewImmediateDispatcher(), &MockDirectory{Users: testUsers}, storage)

	<-s.Login(context.Background(), "user7", "pw7")
	require.True(t, s.IsAuthenticated())

	s.Logout()

	assert.False(t, s.IsAuthenticated())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Nil(t, storage.Session)
}

// Ensures a session persisted by a previous process is restored at build time.
func TestRehydration(t *testing.T) {
	sess := NewSession(testUsers[0])
	storage := &MockStorage{Session: &sess}

	s := NewIdentityStore(zap.NewNop(), NewImmediateDispatcher(), &MockDirectory{}, storage)

	require.True(t, s.IsAuthenticated())
	got, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, sess, got)
}

// Ensures a failing persistence layer does not block the login itself.
func TestLogin_PersistFailureIsBestEffort(t *testing.T) {
	storage := &MockStorage{SaveErr: errors.New("disk full")}
	s := NewIdentityStore(zap.NewNop(), NewImmediateDispatcher(), &MockDirectory{Users: testUsers}, storage)

	<-s.Login(context.Background(), "user7", "pw7")

	assert.True(t, s.IsAuthenticated())
	assert.Empty(t, s.Error())
}

// Ensures the directory never matches an unknown username and never keeps
// the plaintext password past construction.
func TestDirectoryLookup(t *testing.T) {
	dir, err := NewDirectory(SeedUsers())
	require.NoError(t, err)

	u, ok := dir.Lookup("admin", "admin123")
	require.True(t, ok)
	assert.Equal(t, 1, u.ID)
	assert.NotEqual(t, "admin123", u.Password)

	_, ok = dir.Lookup("nobody", "admin123")
	assert.False(t, ok)
	_, ok = dir.Lookup("admin", "")
	assert.False(t, ok)
}
