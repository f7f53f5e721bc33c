package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/souleimarejeb/rbac-app/internal/auth"
	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
)

// ClaimsKey is the echo context key holding the authenticated *auth.Claims.
const ClaimsKey = "user"

type claimsCtxKey struct{}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Guard requires a valid bearer token on every registered route except the
// ones marked public.
type Guard struct {
	tokens TokenValidator
	logger *slog.Logger
	public map[string]struct{}

	routesOnce sync.Once
	routes     map[string]struct{}
}

// NewGuard creates a guard validating tokens with tokens.
func NewGuard(tokens TokenValidator, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		tokens: tokens,
		logger: logger.With(slog.String("component", "guard")),
		public: make(map[string]struct{}),
	}
}

// Public marks routes as reachable without a token. Call it while wiring
// routes, before the server starts.
func (g *Guard) Public(routes ...*echo.Route) {
	for _, r := range routes {
		g.public[routeKey(r.Method, r.Path)] = struct{}{}
	}
}

// IsPublic reports whether method and route path were marked public.
func (g *Guard) IsPublic(method, path string) bool {
	_, ok := g.public[routeKey(method, path)]
	return ok
}

// Middleware returns the echo middleware enforcing the guard.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		Skipper:     g.skip,
		ContextKey:  ClaimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.tokens.Validate(token)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(ClaimsKey).(*auth.Claims)
			if !ok {
				return
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithClaims(req.Context(), claims)))
		},
		ErrorHandler: g.reject,
	})
}

// skip lets public routes through, as well as requests that matched no
// route so they still end in 404/405. On a miss echo reports the closest
// route pattern as c.Path(), so the pattern is checked against the request.
func (g *Guard) skip(c echo.Context) bool {
	method := c.Request().Method
	if g.IsPublic(method, c.Path()) {
		return true
	}
	if !g.isRegistered(c.Echo(), method, c.Path()) {
		return true
	}
	return !matchesPattern(c.Path(), requestPath(c.Request()))
}

func requestPath(r *http.Request) string {
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	return r.URL.Path
}

// matchesPattern reports whether path fits an echo route pattern. A param
// segment matches any value, including an empty one, and * matches the rest.
func matchesPattern(pattern, path string) bool {
	patternSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(path, "/")
	for i, seg := range patternSegs {
		if i >= len(pathSegs) {
			return false
		}
		if i == len(patternSegs)-1 && strings.HasSuffix(seg, "*") {
			return strings.HasPrefix(strings.Join(pathSegs[i:], "/"), strings.TrimSuffix(seg, "*"))
		}
		if strings.Contains(seg, ":") {
			if !strings.HasPrefix(pathSegs[i], seg[:strings.Index(seg, ":")]) {
				return false
			}
			continue
		}
		if seg != pathSegs[i] {
			return false
		}
	}
	return len(patternSegs) == len(pathSegs)
}

func (g *Guard) isRegistered(e *echo.Echo, method, path string) bool {
	g.routesOnce.Do(func() {
		g.routes = make(map[string]struct{})
		for _, r := range e.Routes() {
			g.routes[routeKey(r.Method, r.Path)] = struct{}{}
		}
	})
	_, ok := g.routes[routeKey(method, path)]
	return ok
}

func (g *Guard) reject(c echo.Context, err error) error {
	message := "missing bearer token"
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		message = "token expired"
	case errors.Is(err, auth.ErrTokenSignatureInvalid), errors.Is(err, auth.ErrTokenMalformed):
		message = "invalid token"
	}
	g.logger.DebugContext(c.Request().Context(), "request rejected",
		slog.String("method", c.Request().Method),
		slog.String("route", c.Path()),
		slog.Any("error", err),
	)
	return apperrors.Unauthorized("%s", message)
}

// WithClaims stores claims on ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext returns the authenticated identity of the request.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}

func routeKey(method, path string) string {
	return method + " " + path
}
