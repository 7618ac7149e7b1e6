package httppresentation

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/leafy-market/leafy-backend/internal/application/auth"
	"github.com/leafy-market/leafy-backend/internal/observability"
	"github.com/leafy-market/leafy-backend/internal/observability/logctx"
)

const (
	headerRequestID = "X-Request-ID"
	actorContextKey = "leafy.actor"
)

// Observability combines W3C trace-context extraction, request-scoped logger
// injection, X-Request-ID echo, and HTTP RED metrics with low-cardinality
// route labels.
func Observability(base observability.Logger, tel observability.Telemetry) gin.HandlerFunc {
	if base == nil {
		base = tel.Logger()
	}
	prop := otel.GetTextMapPropagator() // W3C by default

	return func(c *gin.Context) {
		r := c.Request
		ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		sc := trace.SpanContextFromContext(ctx)

		rid := r.Header.Get(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(headerRequestID, rid)

		fields := []observability.Field{observability.F("request_id", rid)}
		if sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		reqLogger := base.With(fields...)
		c.Request = r.WithContext(logctx.With(ctx, reqLogger))

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		tel.Counter(observability.MHTTPRequests).Add(1,
			observability.L("method", r.Method),
			observability.L("route", route),
			observability.L("status", status),
		)
		tel.Histogram(observability.MHTTPRequestDuration).Observe(time.Since(start).Seconds(),
			observability.L("method", r.Method),
			observability.L("route", route),
			observability.L("status", status),
		)

		reqLogger.Info("http_request",
			observability.F("method", r.Method),
			observability.F("route", route),
			observability.F("status", c.Writer.Status()),
			observability.F("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}

// CORS mirrors the permissive policy of the storefront: any origin with
// credentials, the verbs the frontend uses, and its cache-busting headers.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Cache-Control, Pragma")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ResolveActor parses the bearer token, if any, and stores the resulting actor
// on the context. Invalid or missing tokens degrade to guest; endpoints that
// need authentication gate on the actor afterwards.
func ResolveActor(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := authSvc.ActorFromToken(bearerToken(c.Request))
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// RequireAuth rejects guests before the handler runs.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorFrom(c).IsGuest() {
			writeError(c, http.StatusUnauthorized, auth.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everyone but admins before the handler runs.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := actorFrom(c).RequireAdmin(); err != nil {
			writeDomainError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) auth.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(auth.Actor); ok {
			return actor
		}
	}
	return auth.Guest()
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
