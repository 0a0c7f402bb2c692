package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/api/handlers"
	"github.com/Togather-Foundation/eventplanner/internal/api/middleware"
	"github.com/Togather-Foundation/eventplanner/internal/audit"
	"github.com/Togather-Foundation/eventplanner/internal/auth"
	"github.com/Togather-Foundation/eventplanner/internal/clock"
	"github.com/Togather-Foundation/eventplanner/internal/config"
	"github.com/Togather-Foundation/eventplanner/internal/domain/attendees"
	"github.com/Togather-Foundation/eventplanner/internal/domain/events"
	"github.com/Togather-Foundation/eventplanner/internal/domain/tickets"
	"github.com/Togather-Foundation/eventplanner/internal/metrics"
	"github.com/Togather-Foundation/eventplanner/internal/storage"
	"github.com/rs/zerolog"
)

const apiPrefix = "/api/v1"

// Deps are the collaborators the router wires into services and handlers.
type Deps struct {
	Config    config.Config
	Logger    zerolog.Logger
	Store     storage.DocumentStore
	Verifier  auth.Verifier
	Clock     clock.Clock
	Audit     *audit.Logger // defaults to an audit logger on Logger
	JobRunner string
	Version   string
	GitCommit string
	BuildDate string
}

// Router is the HTTP entry point. Close releases the rate limiter.
type Router struct {
	handler http.Handler
	limiter *middleware.RateLimiter
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

func (rt *Router) Close() {
	rt.limiter.Stop()
}

// route is one row of the route table. Routes with no roles are public.
type route struct {
	pattern       string
	roles         []auth.Role
	allowSameUser bool
	validate      func(http.Handler) http.Handler
	handler       http.Handler
}

var (
	anyRole        = []auth.Role{auth.RoleAdmin, auth.RoleOrganizer, auth.RoleUser}
	adminOrganizer = []auth.Role{auth.RoleAdmin, auth.RoleOrganizer}
	adminOnly      = []auth.Role{auth.RoleAdmin}
)

func NewRouter(deps Deps) (*Router, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("router: document store is required")
	}
	if deps.Verifier == nil {
		return nil, fmt.Errorf("router: credential verifier is required")
	}

	v := middleware.NewValidator()
	if err := handlers.RegisterValidations(v); err != nil {
		return nil, fmt.Errorf("router: register validations: %w", err)
	}

	eventsService := events.NewService(deps.Store, deps.Clock, deps.Logger)
	attendeesService := attendees.NewService(deps.Store, eventsService, deps.Clock, deps.Logger)
	ticketsService := tickets.NewService(deps.Store, eventsService, attendeesService, deps.Clock, deps.Logger)

	eventsHandler := handlers.NewEventsHandler(eventsService)
	attendeesHandler := handlers.NewAttendeesHandler(attendeesService)
	ticketsHandler := handlers.NewTicketsHandler(ticketsService)
	health := handlers.NewHealthChecker(deps.Store, deps.JobRunner, deps.Version, deps.GitCommit)

	routes := []route{
		{pattern: "GET /healthz", handler: handlers.Healthz()},
		{pattern: "GET /readyz", handler: health.Readyz()},
		{pattern: "GET /version", handler: VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate)},
		{pattern: "GET /metrics", handler: metrics.Handler()},

		{pattern: "GET /events", roles: anyRole, handler: http.HandlerFunc(eventsHandler.List)},
		{pattern: "GET /events/{id}", roles: anyRole, handler: http.HandlerFunc(eventsHandler.Get)},
		{pattern: "POST /events", roles: adminOrganizer,
			validate: middleware.Validate[handlers.EventCreateRequest](v),
			handler:  http.HandlerFunc(eventsHandler.Create)},
		{pattern: "PUT /events/{id}", roles: adminOrganizer,
			validate: middleware.Validate[handlers.EventUpdateRequest](v, "id"),
			handler:  http.HandlerFunc(eventsHandler.Update)},
		{pattern: "DELETE /events/{id}", roles: adminOnly, handler: http.HandlerFunc(eventsHandler.Delete)},

		{pattern: "GET /events/{id}/attendees", roles: adminOrganizer, handler: http.HandlerFunc(attendeesHandler.List)},
		{pattern: "POST /events/{id}/attendees", roles: anyRole,
			validate: middleware.Validate[handlers.AttendeeCreateRequest](v, "id"),
			handler:  http.HandlerFunc(attendeesHandler.Create)},
		{pattern: "GET /events/{id}/attendees/{attendeeId}", roles: adminOrganizer, handler: http.HandlerFunc(attendeesHandler.Get)},
		{pattern: "PUT /events/{id}/attendees/{attendeeId}", roles: adminOrganizer,
			validate: middleware.Validate[handlers.AttendeeUpdateRequest](v, "id", "attendeeId"),
			handler:  http.HandlerFunc(attendeesHandler.Update)},
		{pattern: "DELETE /events/{id}/attendees/{attendeeId}", roles: adminOrganizer, handler: http.HandlerFunc(attendeesHandler.Delete)},

		{pattern: "GET /tickets", roles: adminOrganizer, handler: http.HandlerFunc(ticketsHandler.List)},
		{pattern: "GET /tickets/{id}", roles: anyRole, handler: http.HandlerFunc(ticketsHandler.Get)},
		{pattern: "POST /tickets", roles: anyRole,
			validate: middleware.Validate[handlers.TicketCreateRequest](v),
			handler:  http.HandlerFunc(ticketsHandler.Create)},
		{pattern: "PUT /tickets/{id}", roles: adminOrganizer,
			validate: middleware.Validate[handlers.TicketUpdateRequest](v, "id"),
			handler:  http.HandlerFunc(ticketsHandler.Update)},
		{pattern: "DELETE /tickets/{id}", roles: adminOnly, handler: http.HandlerFunc(ticketsHandler.Delete)},

		{pattern: "GET /users/{id}", roles: adminOnly, allowSameUser: true, handler: http.HandlerFunc(handlers.Identity)},
	}

	auditLog := deps.Audit
	if auditLog == nil {
		auditLog = audit.NewLogger(deps.Logger)
	}

	authenticate := middleware.Authenticate(deps.Verifier)
	mux := http.NewServeMux()
	for _, rt := range routes {
		mux.Handle(prefixed(rt), instrument(guard(rt, authenticate, auditLog)))
	}
	mux.Handle("/", instrument(http.HandlerFunc(envelope.NotFound)))

	limiter := middleware.NewRateLimiter(deps.Config.RateLimit)
	handler := chain(mux,
		middleware.CorrelationID(deps.Logger),
		middleware.RequestLogging(deps.Logger),
		middleware.SecurityHeaders(deps.Config.IsProduction()),
		middleware.CORS(deps.Config.CORS, deps.Logger),
		limiter.Middleware,
		middleware.RequestSize(deps.Config.Server.MaxRequestBytes),
	)

	return &Router{handler: handler, limiter: limiter}, nil
}

// prefixed mounts authenticated routes under /api/v1. Probes and /metrics
// stay at the root.
func prefixed(rt route) string {
	if len(rt.roles) == 0 {
		return rt.pattern
	}
	method, path, _ := strings.Cut(rt.pattern, " ")
	return method + " " + apiPrefix + path
}

// guard builds Authenticate → Audit → Authorize → Validate → handler for one
// route. Audit is skipped for reads, so denied writes are still recorded.
func guard(rt route, authenticate func(http.Handler) http.Handler, auditLog *audit.Logger) http.Handler {
	h := rt.handler
	if rt.validate != nil {
		h = rt.validate(h)
	}
	if len(rt.roles) == 0 {
		return h
	}
	h = middleware.Authorize(middleware.AuthorizeOptions{HasRole: rt.roles, AllowSameUser: rt.allowSameUser})(h)
	if method, _, _ := strings.Cut(rt.pattern, " "); method != http.MethodGet {
		h = middleware.Audit(auditLog, pathParams(rt.pattern)...)(h)
	}
	return authenticate(h)
}

// pathParams lists the {name} wildcards of a route pattern.
func pathParams(pattern string) []string {
	var names []string
	rest := pattern
	for {
		_, after, ok := strings.Cut(rest, "{")
		if !ok {
			return names
		}
		name, tail, ok := strings.Cut(after, "}")
		if !ok {
			return names
		}
		names = append(names, strings.TrimSuffix(name, "..."))
		rest = tail
	}
}

// instrument runs inside the mux so metrics and spans see r.Pattern.
func instrument(h http.Handler) http.Handler {
	return metrics.HTTPMiddleware(middleware.Tracing(h))
}

// chain applies middleware so the first argument is outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
