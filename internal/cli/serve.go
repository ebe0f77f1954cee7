package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"jobtracker/tracker-service/internal/grpcserver"
	"jobtracker/tracker-service/internal/httpapi"
)

const serviceName = "tracker-service"

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Migrate bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP (and optional gRPC) server",
		Long: `Run the REST API on TRACKER_PORT. When GRPC_PORT is set the JobService
gRPC API is served on that port as well.

The server stops gracefully on SIGINT or SIGTERM.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "apply the schema before serving")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	rt, err := openRuntime(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.Close()

	if opts.Migrate {
		if err := rt.migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var lis net.Listener
	if rt.cfg.GRPCPort != "" {
		if lis, err = net.Listen("tcp", ":"+rt.cfg.GRPCPort); err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", httpapi.Health(serviceName, opts.Version))
	httpapi.NewHandler(rt.svc, rt.resolver()).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         ":" + rt.cfg.Port,
		Handler:      httpapi.Logging(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		log.WithFields(log.Fields{"version": opts.Version, "port": rt.cfg.Port}).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	var gs *grpc.Server
	if lis != nil {
		gs = grpcserver.Register(grpcserver.NewServer(rt.svc, rt.sessions(), rt.cfg.TrustUserHeader))
		go func() {
			log.WithField("port", rt.cfg.GRPCPort).Info("grpc listening")
			if err := gs.Serve(lis); err != nil {
				errc <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if gs != nil {
		stopGRPC(shutdownCtx, gs)
	}
	log.Info("stopped")
	return runErr
}

// stopGRPC drains in-flight RPCs until ctx expires, then forces the stop.
func stopGRPC(ctx context.Context, gs *grpc.Server) {
	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		gs.Stop()
	}
}
