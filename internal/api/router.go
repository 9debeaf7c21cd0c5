package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/odooqa/qa-system/internal/api/handler"
	"github.com/odooqa/qa-system/internal/api/middleware"
	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
	"github.com/odooqa/qa-system/internal/infrastructure/http/handlers"
)

// Deps is everything the router needs to serve the API.
type Deps struct {
	Auth      ports.AuthService
	Questions ports.QuestionService
	Answers   ports.AnswerService
	JWTSecret string
	// Checks feed the readiness probe; nil reports ready.
	Checks map[string]handlers.Check
	Log    zerolog.Logger
	// Metrics enables the Prometheus middleware and /metrics. Tests leave it
	// off so repeated routers do not register collectors twice.
	Metrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	if d.Metrics {
		e.Use(echoprometheus.NewMiddleware("qa"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Health probes (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler("qa-server").Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Checks).Readiness)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authRequired := middleware.Auth(d.JWTSecret)
	authOptional := middleware.AuthOptional(d.JWTSecret)
	members := middleware.RBAC(domain.RoleMember, domain.RoleAdmin)

	authHandler := handler.NewAuthHandler(d.Auth)
	questionHandler := handler.NewQuestionHandler(d.Questions)
	answerHandler := handler.NewAnswerHandler(d.Answers)

	g := e.Group("/api")

	// --- Auth routes ---
	g.POST("/auth/register", authHandler.Register)
	g.POST("/auth/login", authHandler.Login)
	g.GET("/auth/me", authHandler.Me, authRequired)

	// --- Questions ---
	g.GET("/questions", questionHandler.List)
	g.POST("/questions", questionHandler.Create, authOptional)
	g.GET("/questions/:id", questionHandler.Get)
	g.DELETE("/questions/:id", questionHandler.Delete, authRequired, members)

	// --- Answers and votes ---
	g.GET("/questions/:id/answers", answerHandler.List)
	g.POST("/questions/:id/answers", answerHandler.Create, authRequired, members)
	g.POST("/answers/:id/vote", answerHandler.Vote, authRequired, members)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
