// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/canonical/inventory-identity/internal/clientinfo"
	"github.com/canonical/inventory-identity/internal/config"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring/prometheus"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/pkg/accounts"
	"github.com/canonical/inventory-identity/pkg/authentication"
	"github.com/canonical/inventory-identity/pkg/session"
	"github.com/canonical/inventory-identity/pkg/status"
	"github.com/canonical/inventory-identity/pkg/tenant"
	"github.com/canonical/inventory-identity/pkg/web"
)

const serviceName = "inventory-identity"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the HTTP and gRPC servers and the expiry sweeper, configured from the environment`,
	Run: func(cmd *cobra.Command, args []string) {
		main()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func loadSpecs() *config.EnvSpec {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}
	return specs
}

func serve() error {
	specs := loadSpecs()

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %+v", specs.Redacted())
	defer logger.Sync()

	monitor := prometheus.NewMonitor(serviceName, logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, specs.TracingSampleRatio, logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, specs, tracer, monitor, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	registry := session.NewRegistry(monitor, logger)
	stopListening, err := registry.Listen(ctx, a.bus)
	if err != nil {
		return fmt.Errorf("failed to subscribe to disconnect events: %v", err)
	}
	defer stopListening()

	go a.sweeper.Run(ctx)

	cookies := authentication.NewCookies(specs.SessionCookieName, specs.SessionCookieSecure, specs.RememberMeTTL)
	authMiddleware := authentication.NewMiddleware(a.accounts, cookies, tracer, monitor, logger)
	clientInfo := clientinfo.NewMiddleware(tracer, monitor, logger)
	throttle := web.NewThrottle(specs.LoginRatePerSecond, specs.LoginRateBurst, monitor, logger)

	// Start gRPC server
	lis, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%v", specs.GRPCPort))
	if err != nil {
		logger.Fatalf("failed to listen on grpc port: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(clientInfo.GRPCInterceptor, authMiddleware.GRPCInterceptor),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		logger.Infof("Starting gRPC server on port %v", specs.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatalf("failed to serve gRPC: %v", err)
		}
	}()

	router := web.NewRouter(
		specs.CORSAllowedOrigins,
		clientInfo,
		tracer,
		monitor,
		logger,
		accounts.NewAPI(a.accounts, cookies, authMiddleware.Authenticate(), throttle.Middleware, tracer, monitor, logger),
		tenant.NewAPI(a.tenants, authMiddleware.Authenticate(), tracer, monitor, logger),
		session.NewAPI(registry, authMiddleware.Authenticate(), tracer, monitor, logger),
		status.NewAPI(a.dependencies(), tracer, monitor, logger),
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	logger.Security().SystemShutdown()
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	// live streams never go idle on their own
	registry.CloseAll(session.ReasonShutdown)
	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

func main() {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
