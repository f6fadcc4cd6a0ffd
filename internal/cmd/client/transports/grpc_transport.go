package transports

import (
	"context"
	"errors"
	"io"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	shlyv1 "github.com/MagicGod/shly/api/shly/v1"
)

// GrpcTransport implements ReviewTransport over gRPC.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli shlyv1.ReviewServiceClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(shlyv1.NewReviewServiceClient(conn))
}

func withConsumer(ctx context.Context, consumer string) context.Context {
	if consumer == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, shlyv1.ConsumerMetadataKey, consumer)
}

func fromStatus(st *shlyv1.StatusResponse) Status {
	if st == nil {
		return Status{}
	}
	return Status{
		ConsumerID:     st.ConsumerId,
		Pending:        int(st.Pending),
		Accepted:       int(st.Accepted),
		Retired:        int(st.Retired),
		Current:        st.Current,
		PresentationID: st.PresentationId,
	}
}

// Start implements ReviewTransport.
func (t *GrpcTransport) Start(ctx context.Context, consumer string) (StartResult, error) {
	var out StartResult
	err := t.withClient(ctx, func(cli shlyv1.ReviewServiceClient) error {
		res, err := cli.Start(withConsumer(ctx, consumer), &shlyv1.StartRequest{})
		if err != nil {
			return err
		}
		out = StartResult{Queued: int(res.Queued), Message: res.Message}
		return nil
	})
	return out, err
}

// Skip implements ReviewTransport.
func (t *GrpcTransport) Skip(ctx context.Context, consumer, presentationID string) (SkipResult, error) {
	var out SkipResult
	err := t.withClient(ctx, func(cli shlyv1.ReviewServiceClient) error {
		res, err := cli.Skip(withConsumer(ctx, consumer), &shlyv1.SkipRequest{PresentationId: presentationID})
		if err != nil {
			return err
		}
		out = SkipResult{Status: res.Status, Queue: fromStatus(res.GetQueue())}
		return nil
	})
	return out, err
}

// Current implements ReviewTransport.
func (t *GrpcTransport) Current(ctx context.Context, consumer string) (Presentation, bool, error) {
	var (
		out Presentation
		ok  bool
	)
	err := t.withClient(ctx, func(cli shlyv1.ReviewServiceClient) error {
		res, err := cli.Current(withConsumer(ctx, consumer), &shlyv1.CurrentRequest{})
		if err != nil {
			return err
		}
		if !res.Found {
			return nil
		}
		ok = true
		out = Presentation{
			PresentationID: res.PresentationId,
			Key:            res.Key,
			Label:          res.Label,
			Caption:        res.Caption,
			Remaining:      int(res.Remaining),
		}
		return nil
	})
	return out, ok, err
}

// Verdict implements ReviewTransport.
func (t *GrpcTransport) Verdict(ctx context.Context, consumer string, req VerdictRequest) (VerdictResult, error) {
	var out VerdictResult
	err := t.withClient(ctx, func(cli shlyv1.ReviewServiceClient) error {
		res, err := cli.Verdict(withConsumer(ctx, consumer), &shlyv1.VerdictRequest{
			Owner:          req.Owner,
			Action:         req.Action,
			PresentationId: req.PresentationID,
		})
		if err != nil {
			return err
		}
		out = VerdictResult{Status: res.Status, Action: res.Action}
		return nil
	})
	return out, err
}

// Status implements ReviewTransport.
func (t *GrpcTransport) Status(ctx context.Context, consumer string) (Status, error) {
	var out Status
	err := t.withClient(ctx, func(cli shlyv1.ReviewServiceClient) error {
		res, err := cli.Status(withConsumer(ctx, consumer), &shlyv1.StatusRequest{})
		if err != nil {
			return err
		}
		out = fromStatus(res)
		return nil
	})
	return out, err
}

// Accepted implements ReviewTransport.
func (t *GrpcTransport) Accepted(ctx context.Context, consumer string) (Accepted, error) {
	var out Accepted
	err := t.withClient(ctx, func(cli shlyv1.ReviewServiceClient) error {
		res, err := cli.Accepted(withConsumer(ctx, consumer), &shlyv1.AcceptedRequest{})
		if err != nil {
			return err
		}
		out = Accepted{ConsumerID: res.ConsumerId, Count: len(res.Accepted), Accepted: res.Accepted}
		return nil
	})
	return out, err
}

// ListItems implements ReviewTransport.
func (t *GrpcTransport) ListItems(ctx context.Context, limit int) (ItemList, error) {
	var out ItemList
	err := t.withClient(ctx, func(cli shlyv1.ReviewServiceClient) error {
		res, err := cli.ListItems(ctx, &shlyv1.ListItemsRequest{Limit: int32(limit)})
		if err != nil {
			return err
		}
		out = ItemList{Items: make([]Item, 0, len(res.Items)), Total: int(res.Total)}
		for _, it := range res.Items {
			out.Items = append(out.Items, Item{Key: it.Key, Label: it.Label, Retired: it.Retired})
		}
		return nil
	})
	return out, err
}

// ImportItems implements ReviewTransport.
func (t *GrpcTransport) ImportItems(ctx context.Context, list io.Reader) (int, error) {
	b, err := io.ReadAll(list)
	if err != nil {
		return 0, err
	}
	var n int
	err = t.withClient(ctx, func(cli shlyv1.ReviewServiceClient) error {
		res, err := cli.ImportItems(ctx, &shlyv1.ImportItemsRequest{List: string(b)})
		if err != nil {
			return err
		}
		n = int(res.Imported)
		return nil
	})
	return n, err
}

// Watch streams the consumer's events until ctx is done, the server ends
// the stream, or onEvent returns an error. ErrEndOfStream from onEvent
// ends the watch without error.
func (t *GrpcTransport) Watch(ctx context.Context, consumer string, onEvent func(Event) error) error {
	return t.withClient(ctx, func(cli shlyv1.ReviewServiceClient) error {
		stream, err := cli.Watch(withConsumer(ctx, consumer), &shlyv1.WatchRequest{})
		if err != nil {
			return err
		}
		for {
			m, err := stream.Recv()
			if err != nil {
				if err == io.EOF || ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return nil
				}
				return err
			}
			ev := Event{ID: strconv.FormatUint(m.Id, 10), Type: m.Type, Data: m.GetData()}
			if cbErr := onEvent(ev); cbErr != nil {
				if errors.Is(cbErr, ErrEndOfStream) {
					return nil
				}
				return cbErr
			}
		}
	})
}

var _ ReviewTransport = (*GrpcTransport)(nil)
