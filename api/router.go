package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appMiddleware "github.com/prasetyowira/qrlink/api/middleware"
	"github.com/prasetyowira/qrlink/constant"
	appLogger "github.com/prasetyowira/qrlink/infrastructure/logger"
)

// Router represents the application router
type Router struct {
	handler  *Handler
	router   *chi.Mux
	metrics  http.Handler
	username string
	password string
}

// NewRouter creates a new router. metrics serves the Prometheus endpoint.
func NewRouter(handler *Handler, metrics http.Handler, username, password string) *Router {
	r := chi.NewRouter()

	// Middleware setup
	r.Use(middleware.RealIP)
	r.Use(appMiddleware.RequestLogger())
	r.Use(middleware.Recoverer)

	return &Router{
		handler:  handler,
		router:   r,
		metrics:  metrics,
		username: username,
		password: password,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() {
	appLogger.Info(constant.MsgSettingUpRoutes, appLogger.LoggerInfo{
		ContextFunction: constant.CtxRouter,
	})

	creds := map[string]string{
		r.username: r.password,
	}

	// Public routes
	r.router.Post(constant.RouteQRCode, r.handler.GenerateQRCode)
	r.router.Post(constant.RouteQRCodePNG, r.handler.GenerateQRCodePNG)
	r.router.Post(constant.RouteShorten, r.handler.ShortenURL)

	// Link history with Basic Auth
	r.router.With(
		middleware.BasicAuth(constant.AuthRealm, creds),
	).Get(constant.RouteLinks, r.handler.ListLinks)

	r.router.Method(http.MethodGet, constant.RouteMetrics, r.metrics)

	// Healthcheck
	r.router.Get(constant.RouteHealthcheck, func(w http.ResponseWriter, r *http.Request) {
		appLogger.CtxDebug(r.Context(), constant.MsgHealthcheckRequest, appLogger.LoggerInfo{
			ContextFunction: constant.CtxRouter,
		})

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(constant.MsgHealthy))
	})
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
