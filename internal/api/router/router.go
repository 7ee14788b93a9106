package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/api"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/api/handler"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/api/middleware"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/config"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/metrics"
)

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Health      *handler.HealthHandler
	Package     *handler.PackageHandler
	Reservation *handler.ReservationHandler
	Client      *handler.ClientHandler
}

// New はミドルウェアとルートを設定したEchoインスタンスを作成する
func New(h Handlers, m *metrics.Metrics, metricsCfg config.MetricsConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e)
	if m != nil {
		e.Use(middleware.PrometheusMiddleware(m))
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(metricsCfg))

	v1 := e.Group("/api/v1")
	v1.GET("/health", h.Health.Check)
	v1.GET("/ready", h.Health.Ready)

	packages := v1.Group("/packages")
	packages.POST("", h.Package.Create)
	packages.GET("", h.Package.List)
	packages.GET("/:id", h.Package.GetByID)
	packages.PUT("/:id", h.Package.Update)
	packages.POST("/:id/deactivate", h.Package.Deactivate)
	packages.GET("/:id/quote", h.Package.Quote)
	packages.GET("/:id/availability", h.Package.Availability)

	reservations := v1.Group("/reservations")
	reservations.POST("", h.Reservation.Create)
	reservations.GET("/:id", h.Reservation.GetByID)
	reservations.POST("/:id/payments", h.Reservation.RegisterPayment)
	reservations.POST("/:id/status", h.Reservation.ChangeStatus)
	reservations.POST("/:id/cancel", h.Reservation.Cancel)
	reservations.GET("/:id/statement", h.Reservation.Statement)

	clients := v1.Group("/clients")
	clients.GET("/:client_id/reservations", h.Client.Reservations)
	clients.GET("/:client_id/debt", h.Client.Debt)

	return e
}
