package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/charterbook/api"
	"github.com/Domenick1991/charterbook/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Handlers groups everything the HTTP server exposes.
type Handlers struct {
	Assets      *api.AssetHandler
	Quotes      *api.QuoteHandler
	Drafts      *api.DraftHandler
	StaffDrafts *api.DraftHandler
	Bookings    *api.BookingHandler
	Health      *api.HealthHandler
}

// Run serves HTTP until ctx is canceled or the listener fails.
func Run(ctx context.Context, cfg *config.Config, h Handlers, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg.HTTP, h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg config.HTTPConfig, h Handlers, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Staff-Token"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if h.Health != nil {
		h.Health.Register(r)
	}

	if cfg.SwaggerDir != "" {
		r.StaticFS("/swagger", http.Dir(cfg.SwaggerDir))
		r.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/charterbook.swagger.json"))))
	}

	v1 := r.Group("/api/v1")
	v1.Use(api.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger))
	h.Assets.Register(v1.Group("/assets"))
	h.Quotes.Register(v1.Group("/quotes"))
	h.Drafts.Register(v1.Group("/drafts"))
	h.Bookings.Register(v1.Group("/bookings"))

	// Staff routes exist only when a staff token is configured.
	if h.StaffDrafts != nil && cfg.StaffToken != "" {
		staff := v1.Group("/staff", api.StaffAuth(cfg.StaffToken))
		h.StaffDrafts.Register(staff.Group("/drafts"))
	}

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
