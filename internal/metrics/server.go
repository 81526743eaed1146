package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/roach88/shoplist/internal/product"
)

// ListSource is the read side of the list engine.
type ListSource interface {
	List(scope product.Scope) []product.Name
}

// ListResponse is the body of GET /list.
type ListResponse struct {
	Scope string   `json:"scope"`
	Items []string `json:"items"`
}

// Server is the ops HTTP server.
type Server struct {
	echo *echo.Echo
	addr string
	log  *zap.SugaredLogger
}

// NewServer builds the ops server. m may be nil, in which case /metrics
// is not served.
func NewServer(addr string, m *Metrics, src ListSource, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, addr: addr, log: log.With("component", "ops")}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", float64(v.Latency.Nanoseconds()) / 1e6,
			}
			if v.Error != nil {
				s.log.Errorw("ops request failed", append(fields, "error", v.Error.Error())...)
			} else {
				s.log.Debugw("ops request", fields...)
			}
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}
	e.GET("/list", func(c echo.Context) error {
		scope := product.Scope(c.QueryParam("scope"))
		if scope == "" {
			scope = product.SharedScope
		}
		return c.JSON(http.StatusOK, ListResponse{
			Scope: string(scope),
			Items: product.Names(src.List(scope)),
		})
	})
	return s
}

// Handler exposes the router (tests).
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.log.Infow("ops server listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
