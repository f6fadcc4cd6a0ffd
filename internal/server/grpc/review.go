package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	shlyv1 "github.com/MagicGod/shly/api/shly/v1"
	"github.com/MagicGod/shly/internal/itemstore"
	"github.com/MagicGod/shly/internal/review"
	"github.com/MagicGod/shly/internal/runtime"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

const maxImportBytes = 8 << 20

type reviewSvc struct {
	shlyv1.UnimplementedReviewServiceServer
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// consumerFrom returns the caller identity from the request metadata.
func consumerFrom(ctx context.Context) (string, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	for _, v := range md.Get(shlyv1.ConsumerMetadataKey) {
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", status.Error(codes.InvalidArgument, "missing "+shlyv1.ConsumerMetadataKey)
}

// toStatus maps engine errors to gRPC status errors. Stale actions are
// answered in the response, not as errors.
func toStatus(err error) error {
	switch {
	case errors.Is(err, review.ErrIdentityMismatch):
		return status.Error(codes.PermissionDenied, "not your session")
	case errors.Is(err, review.ErrUnknownAction):
		return status.Error(codes.InvalidArgument, "unknown action")
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func statusResponse(st review.Status) *shlyv1.StatusResponse {
	return &shlyv1.StatusResponse{
		ConsumerId:     st.ConsumerID,
		Pending:        int32(st.Pending),
		Accepted:       int32(st.Accepted),
		Retired:        int32(st.Retired),
		Current:        st.Current,
		PresentationId: st.PresentationID,
	}
}

func (s *reviewSvc) Start(ctx context.Context, _ *shlyv1.StartRequest) (*shlyv1.StartResponse, error) {
	consumer, err := consumerFrom(ctx)
	if err != nil {
		return nil, err
	}
	n := s.rt.Engine().Start(ctx, consumer)
	resp := &shlyv1.StartResponse{Queued: int32(n)}
	if n == 0 {
		resp.Message = "no items available"
	}
	return resp, nil
}

func (s *reviewSvc) Skip(ctx context.Context, req *shlyv1.SkipRequest) (*shlyv1.SkipResponse, error) {
	consumer, err := consumerFrom(ctx)
	if err != nil {
		return nil, err
	}
	resp := &shlyv1.SkipResponse{Status: "applied"}
	if err := s.rt.Engine().Skip(ctx, consumer, req.PresentationId); err != nil {
		if !errors.Is(err, review.ErrStaleAction) {
			return nil, toStatus(err)
		}
		resp.Status = "ignored"
	}
	resp.Queue = statusResponse(s.rt.Engine().Status(consumer))
	return resp, nil
}

func (s *reviewSvc) Verdict(ctx context.Context, req *shlyv1.VerdictRequest) (*shlyv1.VerdictResponse, error) {
	consumer, err := consumerFrom(ctx)
	if err != nil {
		return nil, err
	}
	action, err := review.ParseAction(req.Action)
	if err != nil {
		return nil, toStatus(err)
	}
	owner := req.Owner
	if owner == "" {
		owner = consumer
	}
	err = s.rt.Engine().Judge(ctx, review.Verdict{
		Owner:          owner,
		Actor:          consumer,
		Action:         action,
		PresentationID: req.PresentationId,
	})
	switch {
	case errors.Is(err, review.ErrStaleAction):
		return &shlyv1.VerdictResponse{Status: "ignored"}, nil
	case err != nil:
		s.logger.Debug("verdict refused", logpkg.Consumer(consumer), logpkg.Err(err))
		return nil, toStatus(err)
	}
	return &shlyv1.VerdictResponse{Status: "applied", Action: string(action)}, nil
}

func (s *reviewSvc) Status(ctx context.Context, _ *shlyv1.StatusRequest) (*shlyv1.StatusResponse, error) {
	consumer, err := consumerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return statusResponse(s.rt.Engine().Status(consumer)), nil
}

func (s *reviewSvc) Accepted(ctx context.Context, _ *shlyv1.AcceptedRequest) (*shlyv1.AcceptedResponse, error) {
	consumer, err := consumerFrom(ctx)
	if err != nil {
		return nil, err
	}
	list := s.rt.Engine().Accepted(consumer)
	if list == nil {
		list = []string{}
	}
	return &shlyv1.AcceptedResponse{ConsumerId: consumer, Accepted: list}, nil
}

func (s *reviewSvc) Current(ctx context.Context, _ *shlyv1.CurrentRequest) (*shlyv1.CurrentResponse, error) {
	consumer, err := consumerFrom(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := s.rt.Hub().Outstanding(consumer)
	if !ok {
		return &shlyv1.CurrentResponse{}, nil
	}
	return &shlyv1.CurrentResponse{
		Found:          true,
		PresentationId: p.PresentationID,
		Key:            p.Key,
		Label:          p.Label,
		Caption:        p.Caption,
		Remaining:      int32(p.Remaining),
	}, nil
}

func (s *reviewSvc) ListItems(ctx context.Context, req *shlyv1.ListItemsRequest) (*shlyv1.ListItemsResponse, error) {
	items, err := s.rt.Store().ListAll(ctx)
	if err != nil {
		s.logger.Warn("list items failed", logpkg.Err(err))
		return nil, status.Error(codes.Unavailable, "store unavailable")
	}
	total := len(items)
	if limit := int(req.Limit); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := &shlyv1.ListItemsResponse{Items: make([]*shlyv1.Item, 0, len(items)), Total: int32(total)}
	for _, it := range items {
		out.Items = append(out.Items, &shlyv1.Item{Key: it.Key, Label: it.Label, Retired: s.rt.Engine().Retired(it.Key)})
	}
	return out, nil
}

func (s *reviewSvc) ImportItems(ctx context.Context, req *shlyv1.ImportItemsRequest) (*shlyv1.ImportItemsResponse, error) {
	if len(req.List) > maxImportBytes {
		return nil, status.Error(codes.InvalidArgument, "item list too large")
	}
	items, err := itemstore.ParseList(strings.NewReader(req.List))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid item list")
	}
	if err := s.rt.Store().Put(ctx, items); err != nil {
		s.logger.Error("import items failed", logpkg.Err(err))
		return nil, status.Error(codes.Internal, "failed to import items")
	}
	s.logger.Info("items imported", logpkg.Int("count", len(items)))
	return &shlyv1.ImportItemsResponse{Imported: int32(len(items))}, nil
}

// Watch streams the caller's notifications until the client goes away or
// the server stops. An outstanding presentation is sent first.
func (s *reviewSvc) Watch(_ *shlyv1.WatchRequest, stream shlyv1.ReviewService_WatchServer) error {
	consumer, err := consumerFrom(stream.Context())
	if err != nil {
		return err
	}
	sub := s.rt.Hub().Subscribe(consumer)
	defer sub.Close()
	s.logger.Debug("event stream opened", logpkg.Consumer(consumer))
	defer s.logger.Debug("event stream closed", logpkg.Consumer(consumer))

	for {
		select {
		case <-stream.Context().Done():
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev.Data)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.Send(&shlyv1.Event{Id: ev.ID, Type: ev.Type, Data: data}); err != nil {
				return err
			}
		}
	}
}
