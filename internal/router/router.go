package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/appointment"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/health"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/prometheus"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/public"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/schedule"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/middleware"
)

type Handlers struct {
	Public      *public.Handler
	Appointment *appointment.Handler
	Schedule    *schedule.Handler
	Health      *health.Handler
	// Metrics is optional; nil disables /metrics and request metrics.
	Metrics *prometheus.Handler
}

type RouterConfig struct {
	Mode             string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	MetricsPath      string
	CORSConfig       middleware.CORSConfig
	// Security defaults to the non-production header set.
	Security middleware.SecurityConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   RouterConfig
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.Security == (middleware.SecurityConfig{}) {
		config.Security = middleware.SecurityConfigFor("")
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
	)
	if handlers.Metrics != nil {
		engine.Use(handlers.Metrics.Middleware())
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}

	engine.Use(
		middleware.ErrorHandler(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(config.Security),
		middleware.SizeLimit(sizeLimit),
	)

	return r
}

func (r *Router) Setup() {
	r.handlers.Health.RegisterRoutes(r.engine)
	if r.handlers.Metrics != nil {
		r.engine.GET(r.config.MetricsPath, r.handlers.Metrics.Handler())
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	public := rg.Group("")
	if r.config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.config.RateLimit,
			Burst: r.config.RateBurst,
		})
		public.Use(limiter.RateLimit())
	}
	r.handlers.Public.RegisterRoutes(public)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.handlers.Appointment.RegisterRoutes(rg, r.auth)

	owner := rg.Group("")
	owner.Use(r.auth.RequireOwner())
	r.handlers.Schedule.RegisterRoutes(owner)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
