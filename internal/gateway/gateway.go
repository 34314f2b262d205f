// Package gateway implements the request pipeline fronting the course
// platform's expensive read and write endpoints: CORS preflight,
// identity resolution, admission control, routing, and the uniform
// response envelope, in that order on every request.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coursehub/gateway/internal/upstream"
	"github.com/coursehub/gateway/pkg/cache"
	"github.com/coursehub/gateway/pkg/limiter"
)

// Handler computes the data for one route. It returns either a payload
// for the success envelope or an *Error; anything else it returns is
// wrapped as an upstream error at the dispatcher boundary.
type Handler func(ctx context.Context, rc *RequestContext, r *http.Request) (any, error)

type route struct {
	handler     Handler
	requireAuth bool
	roles       []string // empty means any role
}

// Options wires the gateway's collaborators.
type Options struct {
	Store    upstream.DataStore
	Verifier upstream.IdentityVerifier
	Limiter  *limiter.Limiter
	Cache    *cache.TieredCache
	Logger   *zap.Logger
	Recorder limiter.MetricsRecorder

	// Diagnostics includes upstream error detail in responses. Never
	// enable it for public traffic.
	Diagnostics bool
}

// Gateway dispatches inbound requests. It is stateless per request;
// all shared state lives in the limiter and cache it was given.
type Gateway struct {
	store       upstream.DataStore
	verifier    upstream.IdentityVerifier
	limiter     *limiter.Limiter
	cache       *cache.TieredCache
	health      *HealthReporter
	log         *zap.Logger
	recorder    limiter.MetricsRecorder
	diagnostics bool
	routes      map[string]route
}

// New constructs a Gateway and registers its route table.
func New(opts Options) *Gateway {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = &limiter.NoOpMetricsRecorder{}
	}
	g := &Gateway{
		store:       opts.Store,
		verifier:    opts.Verifier,
		limiter:     opts.Limiter,
		cache:       opts.Cache,
		log:         opts.Logger,
		recorder:    opts.Recorder,
		diagnostics: opts.Diagnostics,
	}
	g.health = NewHealthReporter(opts.Store, opts.Cache, opts.Limiter)

	g.routes = map[string]route{
		"GET /api/leaderboard":                  {handler: g.handleLeaderboard},
		"GET /api/rank":                         {handler: g.handleRank, requireAuth: true},
		"GET /api/dashboard/stats":              {handler: g.handleDashboardStats, requireAuth: true, roles: []string{"teacher", "admin"}},
		"GET /api/health":                       {handler: g.handleHealth},
		"POST /api/progress/sync":               {handler: g.handleProgressSync, requireAuth: true},
		"POST /api/quiz/check":                  {handler: g.handleQuizCheck, requireAuth: true},
		"POST /api/admin/leaderboard/rebuild":   {handler: g.handleLeaderboardRebuild, requireAuth: true, roles: []string{"admin"}},
		"DELETE /api/admin/cache":               {handler: g.handleCachePurge, requireAuth: true, roles: []string{"admin"}},
	}
	return g
}

// ServeHTTP runs the pipeline: Preflight, Identify, AdmissionControl,
// Route, Respond. Every path ends in exactly one envelope and one log
// line.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := &RequestContext{
		ID:         uuid.NewString(),
		Method:     r.Method,
		Path:       r.URL.Path,
		ClientAddr: clientAddr(r),
		StartedAt:  time.Now(),
	}
	w.Header().Set("X-Request-ID", rc.ID)
	setCORS(w.Header())

	// Preflight: a cross-origin probe terminates here.
	if r.Method == http.MethodOptions {
		rc.Status = http.StatusNoContent
		w.WriteHeader(rc.Status)
		g.logRequest(rc)
		return
	}

	// Identify: optional at this stage. A missing or rejected
	// credential just leaves the request anonymous; identity-required
	// routes reject later.
	if cred := bearerToken(r); cred != "" {
		if userID, err := g.verifier.Verify(r.Context(), cred); err == nil {
			rc.UserID = userID
			rc.Role = g.lookupRole(r.Context(), userID)
		}
	}

	// AdmissionControl: a denied request never reaches a handler.
	identifier := rc.UserID
	if identifier == "" {
		identifier = rc.ClientAddr
	}
	rc.Class = classify(rc.Method, rc.Path)
	dec := g.limiter.Check(r.Context(), identifier, rc.Class)
	setRateHeaders(w.Header(), dec)
	g.recorder.Add("gateway.request", 1, map[string]string{"class": string(rc.Class)})
	if !dec.Allowed {
		g.recorder.Add("gateway.ratelimited", 1, map[string]string{"class": string(rc.Class)})
		g.respondError(w, rc, errRateLimited(dec.RetryAfter))
		return
	}

	// Route.
	rt, ok := g.routes[rc.Method+" "+rc.Path]
	if !ok {
		g.respondError(w, rc, errNotFound())
		return
	}
	if rt.requireAuth && rc.UserID == "" {
		g.respondError(w, rc, errUnauthenticated())
		return
	}
	if len(rt.roles) > 0 && !hasRole(rt.roles, rc.Role) {
		g.respondError(w, rc, errForbidden())
		return
	}

	data, err := g.dispatch(rt.handler, rc, r)
	if err != nil {
		g.respondError(w, rc, asError(err))
		return
	}
	g.respondData(w, rc, data)
}

// dispatch invokes the handler with panic containment, so no failure
// inside route logic escapes without an envelope and a log line.
func (g *Gateway) dispatch(h Handler, rc *RequestContext, r *http.Request) (data any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errUpstream(fmt.Errorf("panic in handler: %v", rec))
		}
	}()
	return h(r.Context(), rc, r)
}

// lookupRole fetches the user's role from the data store. Failures
// leave the role empty: the request stays admitted but role-gated
// routes will refuse it.
func (g *Gateway) lookupRole(ctx context.Context, userID string) string {
	result, err := g.store.Query(ctx, "get_user_role", map[string]any{"userId": userID})
	if err != nil {
		g.log.Warn("role lookup failed", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	var row struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(result, &row); err != nil {
		g.log.Warn("role lookup returned malformed row", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return row.Role
}

func hasRole(allowed []string, role string) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
