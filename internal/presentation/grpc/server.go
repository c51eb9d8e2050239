package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/bibbank/credit-service/internal/infrastructure/config"
	"github.com/bibbank/credit-service/pkg/auth"
	"github.com/bibbank/credit-service/pkg/tlsutil"
)

// Server hosts CreditReviewService next to the standard health service.
type Server struct {
	gs     *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer builds the server. Interceptors run in the order recover, log,
// authenticate, so a panic in any handler is still logged and answered.
// TLS material that cannot be loaded is an error, never a silent downgrade.
func NewServer(handler CreditReviewServiceServer, jwtService *auth.JWTService, cfg config.GRPCConfig, logger *slog.Logger) (*Server, error) {
	public := append([]string{
		healthpb.Health_Check_FullMethodName,
		healthpb.Health_Watch_FullMethodName,
	}, PublicMethods...)

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			recoverInterceptor(logger),
			loggingInterceptor(logger),
			auth.UnaryAuthInterceptor(jwtService, public),
		),
	}
	if cfg.TLSCertFile != "" {
		creds, err := tlsutil.ServerCredentials(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("grpc tls: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile, "mutual", cfg.ClientCAFile != "")
	}

	gs := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	RegisterCreditReviewServiceServer(gs, handler)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	if cfg.Reflection {
		reflection.Register(gs)
	}

	return &Server{gs: gs, health: hs, logger: logger}, nil
}

// Serve blocks accepting connections on addr.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.logger.Info("gRPC server listening", "addr", addr)
	return s.gs.Serve(lis)
}

// GracefulStop reports NOT_SERVING to health probes, then waits for
// in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		level := slog.LevelInfo
		if code == codes.Internal || code == codes.Unknown {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "grpc request",
			"method", info.FullMethod,
			"code", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

func recoverInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "panic in grpc handler",
					"method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
