package grpcserver

import (
	"context"

	shlyv1 "github.com/MagicGod/shly/api/shly/v1"
	"github.com/MagicGod/shly/internal/runtime"
)

type healthSvc struct {
	shlyv1.UnimplementedHealthServiceServer
	rt *runtime.Runtime
}

func (h *healthSvc) Check(ctx context.Context, _ *shlyv1.HealthCheckRequest) (*shlyv1.HealthCheckResponse, error) {
	if err := h.rt.CheckHealth(ctx); err != nil {
		return &shlyv1.HealthCheckResponse{Status: "not_serving"}, nil
	}
	return &shlyv1.HealthCheckResponse{Status: "ok"}, nil
}
