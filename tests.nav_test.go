package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNavigator(t *testing.T, loginAsUser string) *Navigator {
	t.Helper()
	identity := newTestIdentity(append([]User{
		{ID: 1, Username: "boss", Password: "bosspw", Role: RoleAdmin},
	}, testUsers...)...)
	if loginAsUser != "" {
		password := map[string]string{"boss": "bosspw", "user7": "pw7"}[loginAsUser]
		<-identity.Login(context.Background(), loginAsUser, password)
		require.True(t, identity.IsAuthenticated())
	}
	return NewNavigator(zap.NewNop(), identity, DefaultRoutes())
}

// Ensures public destinations are reachable regardless of session state.
func TestResolve_PublicRoutes(t *testing.T) {
	n := newTestNavigator(t, "")

	for _, path := range []string{"/", "/books", "/books/3", "/login"} {
		d := n.Resolve(path)
		assert.Equal(t, OutcomeAllow, d.Outcome, "path %s", path)
		require.NotNil(t, d.Route, "path %s", path)
	}
}

// Ensures an unauthenticated attempt at a protected destination redirects
// to login and preserves the intended path for resumption.
func TestResolve_LoginRedirect(t *testing.T) {
	n := newTestNavigator(t, "")

	d := n.Resolve("/my-books")

	assert.Equal(t, OutcomeLoginRedirect, d.Outcome)
	require.NotNil(t, d.Route)
	assert.Equal(t, RouteLogin, d.Route.Name)
	assert.Equal(t, "/my-books", d.Redirect)
}

// Admin destinations also require authentication first: an anonymous visit
// goes to login, not home.
func TestResolve_AdminUnauthenticated(t *testing.T) {
	n := newTestNavigator(t, "")

	d := n.Resolve("/admin/books")

	assert.Equal(t, OutcomeLoginRedirect, d.Outcome)
	assert.Equal(t, "/admin/books", d.Redirect)
}

// Ensures an authenticated non-admin is sent home from every admin
// destination, with no redirect to resume.
func TestResolve_AdminDenied(t *testing.T) {
	n := newTestNavigator(t, "user7")

	for _, path := range []string{"/admin", "/admin/books", "/admin/books/add", "/admin/books/edit/4", "/admin/users", "/admin/borrowings"} {
		d := n.Resolve(path)
		assert.Equal(t, OutcomeHomeRedirect, d.Outcome, "path %s", path)
		require.NotNil(t, d.Route, "path %s", path)
		assert.Equal(t, RouteHome, d.Route.Name, "path %s", path)
		assert.Empty(t, d.Redirect, "path %s", path)
	}
}

// Ensures an admin session passes every gate.
func TestResolve_AdminAllowed(t *testing.T) {
	n := newTestNavigator(t, "boss")

	for _, path := range []string{"/my-books", "/admin", "/admin/borrowings"} {
		d := n.Resolve(path)
		assert.Equal(t, OutcomeAllow, d.Outcome, "path %s", path)
	}
}

// Ensures an authenticated user reaches their protected, non-admin pages.
func TestResolve_AuthenticatedUser(t *testing.T) {
	n := newTestNavigator(t, "user7")

	d := n.Resolve("/my-books")

	assert.Equal(t, OutcomeAllow, d.Outcome)
	assert.Equal(t, "MyBooks", d.Route.Name)
}

// Ensures unmatched paths fall through to the catch-all outcome.
func TestResolve_NotFound(t *testing.T) {
	n := newTestNavigator(t, "boss")

	for _, path := range []string{"/nope", "/books/3/extra", "/adminx"} {
		d := n.Resolve(path)
		assert.Equal(t, OutcomeNotFound, d.Outcome, "path %s", path)
		assert.Nil(t, d.Route, "path %s", path)
	}
}

// Ensures parameterized routes expose their captured segments.
func TestResolve_RouteParams(t *testing.T) {
	n := newTestNavigator(t, "")

	d := n.Resolve("/books/17")

	require.Equal(t, OutcomeAllow, d.Outcome)
	assert.Equal(t, "BookDetail", d.Route.Name)
	assert.Equal(t, "17", d.Params.ByName("id"))
}

// Ensures a trailing slash still matches the intended destination.
func TestResolve_TrailingSlash(t *testing.T) {
	n := newTestNavigator(t, "")

	d := n.Resolve("/books/")

	assert.Equal(t, OutcomeAllow, d.Outcome)
	assert.Equal(t, "Books", d.Route.Name)
}
