package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightledger/api"
	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/auth"
	"github.com/Domenick1991/flightledger/internal/service/flights"
	"github.com/Domenick1991/flightledger/internal/service/tickets"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, verifier auth.Verifier, flightSvc flights.FlightUseCase, ticketSvc tickets.TicketUseCase) error {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(api.Auth(verifier))

	v1 := router.Group("/v1")
	api.NewFlightHandler(flightSvc).Register(v1.Group("/flights"))
	api.NewTicketHandler(ticketSvc).Register(v1)

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/flightledger.swagger.json"),
		)))
	}

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
