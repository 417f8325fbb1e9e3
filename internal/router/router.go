package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinicore/clinic-api/internal/handler"
	adminhandler "github.com/clinicore/clinic-api/internal/handler/admin"
	appointmenthandler "github.com/clinicore/clinic-api/internal/handler/appointment"
	authhandler "github.com/clinicore/clinic-api/internal/handler/auth"
	patienthandler "github.com/clinicore/clinic-api/internal/handler/patient"
	professionalhandler "github.com/clinicore/clinic-api/internal/handler/professional"
	recordhandler "github.com/clinicore/clinic-api/internal/handler/record"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORSConfig     middleware.CORSConfig
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	db      *sqlx.DB
	metrics *metrics.Metrics

	authH         *authhandler.Handler
	patientH      *patienthandler.Handler
	professionalH *professionalhandler.Handler
	adminH        *adminhandler.Handler
	appointmentH  *appointmenthandler.Handler
	recordH       *recordhandler.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	db *sqlx.DB,
	m *metrics.Metrics,
	authH *authhandler.Handler,
	patientH *patienthandler.Handler,
	professionalH *professionalhandler.Handler,
	adminH *adminhandler.Handler,
	appointmentH *appointmenthandler.Handler,
	recordH *recordhandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		db:            db,
		metrics:       m,
		authH:         authH,
		patientH:      patientH,
		professionalH: professionalH,
		adminH:        adminH,
		appointmentH:  appointmentH,
		recordH:       recordH,
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
	)
	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/healthz", handler.Health(r.db))
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	// Public surface: login and patient self-registration.
	r.authH.RegisterPublicRoutes(api)
	r.patientH.RegisterPublicRoutes(api)

	// Everything else requires a resolved actor.
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.authH.RegisterRoutes(protected)
	r.patientH.RegisterRoutes(protected)
	r.professionalH.RegisterRoutes(protected)
	r.adminH.RegisterRoutes(protected)
	r.appointmentH.RegisterRoutes(protected)
	r.recordH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		r.metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		r.metrics.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		if c.Writer.Status() >= 400 {
			r.metrics.ErrorTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		}
	}
}
