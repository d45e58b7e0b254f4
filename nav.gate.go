package main

import (
	"net/http"
	"strings"
	"sync"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Outcome is the access gate decision for one navigation attempt.
type Outcome string

const (
	OutcomeAllow         Outcome = "allow"
	OutcomeLoginRedirect Outcome = "login"
	OutcomeHomeRedirect  Outcome = "home"
	OutcomeNotFound      Outcome = "notfound"
)

// Decision carries the gate outcome. Route is the destination actually
// reached (the login or home route on redirects). Redirect preserves the
// originally intended path on a login redirect so navigation can resume
// there after authentication.
type Decision struct {
	Outcome  Outcome
	Route    *Route
	Params   httprouter.Params
	Redirect string
}

// Navigator matches paths against the route table and gates every
// navigation attempt on the current session. The check is synchronous and
// stateless beyond reading the identity store.
type Navigator struct {
	logger   *zap.Logger
	identity *IdentityStore
	router   *httprouter.Router
	routes   []Route

	mu      sync.Mutex
	matched *Route // set by the matched handle during Resolve
}

func NewNavigator(logger *zap.Logger, identity *IdentityStore, routes []Route) *Navigator {
	n := &Navigator{
		logger:   logger,
		identity: identity,
		router:   httprouter.New(),
		routes:   routes,
	}
	for i := range n.routes {
		rt := &n.routes[i]
		n.router.GET(rt.Path, func(_ http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			n.matched = rt
		})
	}
	return n
}

// Resolve evaluates the gate for one navigation attempt. Unmatched paths
// resolve to the catch-all not-found outcome.
func (n *Navigator) Resolve(path string) Decision {
	n.mu.Lock()
	defer n.mu.Unlock()

	route, ps := n.lookup(path)
	if route == nil {
		n.logger.Debug("gate: no destination", zap.String("path", path))
		return Decision{Outcome: OutcomeNotFound}
	}

	switch {
	case route.RequiresAuth && !n.identity.IsAuthenticated():
		n.logger.Info("gate: redirecting to login", zap.String("path", path))
		return Decision{Outcome: OutcomeLoginRedirect, Route: n.routeNamed(RouteLogin), Redirect: path}
	case route.RequiresAdmin && !n.identity.IsAdmin():
		n.logger.Info("gate: admin denied, redirecting home", zap.String("path", path))
		return Decision{Outcome: OutcomeHomeRedirect, Route: n.routeNamed(RouteHome)}
	default:
		return Decision{Outcome: OutcomeAllow, Route: route, Params: ps}
	}
}

// lookup runs under n.mu: the matched handle writes into n.matched.
func (n *Navigator) lookup(path string) (*Route, httprouter.Params) {
	n.matched = nil
	handle, ps, tsr := n.router.Lookup(http.MethodGet, path)
	if handle == nil && tsr && len(path) > 1 {
		handle, ps, _ = n.router.Lookup(http.MethodGet, strings.TrimSuffix(path, "/"))
	}
	if handle == nil {
		return nil, nil
	}
	handle(nil, nil, ps)
	return n.matched, ps
}

func (n *Navigator) routeNamed(name string) *Route {
	for i := range n.routes {
		if n.routes[i].Name == name {
			return &n.routes[i]
		}
	}
	return nil
}
