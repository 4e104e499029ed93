package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/msribeiro2010/napje-pje-proxy/dto"
	"github.com/msribeiro2010/napje-pje-proxy/services/handlers"
	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

// HttpService wires the request pipeline: session validation, authorization
// gate, rate limiter, then the audited query handlers.
type HttpService struct {
	context.DefaultService

	authSvc       *AuthMiddleware
	rateLimitSvc  *RateLimitService
	pjeSvc        *PJeService
	auditSvc      *AuditService
	monitoringSvc *MonitoringService

	port           int
	allowedOrigins string
	server         *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	svc.allowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	if svc.allowedOrigins == "" {
		svc.allowedOrigins = "http://localhost:5173"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.pjeSvc = svc.Service(PJE_SVC).(*PJeService)
	svc.auditSvc = svc.Service(AUDIT_SVC).(*AuditService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		ErrorHandler:          svc.handleError,
		DisableStartupMessage: os.Getenv("LOG_LEVEL") == "INFO",
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: svc.allowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, DELETE, OPTIONS",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	// Operational probe: no auth, no rate limit, no audit.
	app.Get("/health", svc.health)

	queryHandler := handlers.NewQueryHandler(svc.pjeSvc, svc.auditSvc)
	adminHandler := handlers.NewAdminHandler(svc.rateLimitSvc)

	data := app.Group("/api/data",
		svc.authSvc.RequiredAuth(),
		svc.rateLimitSvc.RateLimit(),
	)
	data.Get("/orgaos-julgadores", queryHandler.GetOrgaosJulgadores)
	data.Get("/processos", queryHandler.GetProcessos)
	data.Get("/servidores", queryHandler.GetServidores)

	admin := app.Group("/api/admin",
		svc.authSvc.RequiredAuth(),
		svc.authSvc.RequireAdmin(),
	)
	admin.Get("/rate-limits", adminHandler.GetRateLimitStats)
	admin.Delete("/rate-limits/:identifier", adminHandler.ResetRateLimit)

	svc.server = app

	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Health
// @Description Liveness probe for the proxy itself
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (svc *HttpService) health(c *fiber.Ctx) error {
	return shared.ResponseData(c, fiber.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Unix(),
	})
}

// handleError maps pipeline errors to responses. Internal detail is logged
// here and never written to the body.
func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			log.WithError(appErr).WithFields(log.Fields{
				"kind": appErr.Kind,
				"path": c.Path(),
			}).Error("Request failed")
		}
		return shared.ResponseError(c, appErr.StatusCode, appErr.Message)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseError(c, fiberErr.Code, fiberErr.Message)
	}

	log.WithError(err).WithField("path", c.Path()).Error("Unhandled error")
	return shared.ResponseError(c, fiber.StatusInternalServerError, "Internal Server Error")
}
