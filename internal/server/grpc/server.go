package grpcserver

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	shlyv1 "github.com/MagicGod/shly/api/shly/v1"
	"github.com/MagicGod/shly/internal/runtime"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	grpc   *grpc.Server
	lis    net.Listener
	logger logpkg.Logger
}

// New constructs a gRPC server and registers services.
func New(rt *runtime.Runtime, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	logger = logger.With(logpkg.Component("grpc"))
	s := &Server{rt: rt, logger: logger}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.logUnary)}, opts...)
	s.grpc = grpc.NewServer(opts...)
	shlyv1.RegisterHealthServiceServer(s.grpc, &healthSvc{rt: rt})
	shlyv1.RegisterReviewServiceServer(s.grpc, &reviewSvc{rt: rt, logger: logger})
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("grpc listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(l) }()
	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Serve accepts connections on l until the server stops.
func (s *Server) Serve(l net.Listener) error {
	s.lis = l
	return s.grpc.Serve(l)
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// logUnary tags the call with a request id and logs its outcome.
func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	reqID := uuid.New().String()
	ctx = context.WithValue(ctx, logpkg.RequestIDKey, reqID)
	start := time.Now()
	resp, err := handler(ctx, req)
	fields := []logpkg.Field{
		logpkg.Str("method", info.FullMethod),
		logpkg.Str(logpkg.RequestIDKey, reqID),
		logpkg.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		s.logger.Debug("grpc call failed", append(fields, logpkg.Err(err))...)
	} else {
		s.logger.Debug("grpc call", fields...)
	}
	return resp, err
}
