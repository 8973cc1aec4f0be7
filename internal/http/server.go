// README: API gateway; builds the gin engine and delegates to the trip planner.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"tripgen/internal/http/handlers"
	"tripgen/internal/metrics"
	"tripgen/internal/modules/ratelimit"
)

// ServerDeps wires the HTTP layer. Planner is required; the rest are optional and
// their routes or middleware are left out when nil.
type ServerDeps struct {
	Planner handlers.Planner
	Places  handlers.Suggester
	Usage   handlers.UsageSummarizer
	Limiter ratelimit.Limiter
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	GenerateTimeout time.Duration
	CORSOrigins     []string

	// TrustedProxies may set the client address via X-Forwarded-For. Nil trusts none.
	TrustedProxies []string
}

type Server struct {
	planner handlers.Planner
	places  handlers.Suggester
	usage   handlers.UsageSummarizer
	limiter ratelimit.Limiter
	metrics *metrics.Metrics
	logger  *slog.Logger

	generateTimeout time.Duration
	corsOrigins     []string
	trustedProxies  []string
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		planner:         deps.Planner,
		places:          deps.Places,
		usage:           deps.Usage,
		limiter:         deps.Limiter,
		metrics:         deps.Metrics,
		logger:          logger,
		generateTimeout: deps.GenerateTimeout,
		corsOrigins:     deps.CORSOrigins,
		trustedProxies:  deps.TrustedProxies,
	}
}

// Routes returns the full handler: the gin engine behind CORS.
func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := NewRouter(s)

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(engine)
}
