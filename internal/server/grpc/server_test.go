package grpcserver

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	shlyv1 "github.com/MagicGod/shly/api/shly/v1"
	cfgpkg "github.com/MagicGod/shly/internal/config"
	"github.com/MagicGod/shly/internal/runtime"
)

const bufSize = 1 << 20

func keepOrder(int, func(i, j int)) {}

func dialer(s *grpc.Server) func(context.Context, string) (net.Conn, error) {
	lis := bufconn.Listen(bufSize)
	go func() { _ = s.Serve(lis) }()
	return func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
}

func newTestConn(t *testing.T, list string) (*grpc.ClientConn, *runtime.Runtime) {
	t.Helper()
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.DataDir = dir
	cfg.Store.File = filepath.Join(dir, "profiles.txt")
	cfg.Fetch.Enabled = false
	if list != "" {
		if err := os.WriteFile(cfg.Store.File, []byte(list), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	rt, err := runtime.Open(runtime.Options{Config: cfg, Shuffle: keepOrder})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	srv := New(rt, nil)
	t.Cleanup(srv.Close)
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer(srv.grpc)),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn, rt
}

func as(ctx context.Context, consumer string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, shlyv1.ConsumerMetadataKey, consumer)
}

func TestHealthOverGRPC(t *testing.T) {
	conn, _ := newTestConn(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := shlyv1.NewHealthServiceClient(conn).Check(ctx, &shlyv1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != "ok" {
		t.Fatalf("status %q", res.Status)
	}
}

func TestReviewFlowOverGRPC(t *testing.T) {
	conn, rt := newTestConn(t, "https://vk.com/a | Anna\nhttps://vk.com/b\n")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := shlyv1.NewReviewServiceClient(conn)
	uctx := as(ctx, "u1")

	start, err := c.Start(uctx, &shlyv1.StartRequest{})
	if err != nil || start.Queued != 2 {
		t.Fatalf("start: %+v %v", start, err)
	}
	rt.Engine().Wait()

	st, err := c.Status(uctx, &shlyv1.StatusRequest{})
	if err != nil || st.Current != "https://vk.com/a" || st.Pending != 2 {
		t.Fatalf("status: %+v %v", st, err)
	}
	cur, err := c.Current(uctx, &shlyv1.CurrentRequest{})
	if err != nil || !cur.Found || cur.Key != "https://vk.com/a" || cur.PresentationId != st.PresentationId {
		t.Fatalf("current: %+v %v", cur, err)
	}

	v, err := c.Verdict(uctx, &shlyv1.VerdictRequest{Action: "accept", PresentationId: cur.PresentationId})
	if err != nil || v.Status != "applied" {
		t.Fatalf("verdict: %+v %v", v, err)
	}
	rt.Engine().Wait()

	acc, err := c.Accepted(uctx, &shlyv1.AcceptedRequest{})
	if err != nil || len(acc.Accepted) != 1 || acc.Accepted[0] != "https://vk.com/a" {
		t.Fatalf("accepted: %+v %v", acc, err)
	}

	sk, err := c.Skip(uctx, &shlyv1.SkipRequest{})
	if err != nil || sk.Status != "applied" {
		t.Fatalf("skip: %+v %v", sk, err)
	}
	rt.Engine().Wait()
	if cur := rt.Engine().Status("u1").Current; cur != "" {
		t.Fatalf("queue should be drained, current %q", cur)
	}
}

func TestMissingConsumerIsInvalid(t *testing.T) {
	conn, _ := newTestConn(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := shlyv1.NewReviewServiceClient(conn).Status(ctx, &shlyv1.StatusRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

func TestUnknownActionOverGRPC(t *testing.T) {
	conn, _ := newTestConn(t, "https://vk.com/a\n")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := shlyv1.NewReviewServiceClient(conn).Verdict(as(ctx, "u1"), &shlyv1.VerdictRequest{Action: "maybe"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

func TestDisplacedVerdictIgnoredOverGRPC(t *testing.T) {
	conn, rt := newTestConn(t, "https://vk.com/k\nhttps://vk.com/m\n")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := shlyv1.NewReviewServiceClient(conn)
	u1, u2 := as(ctx, "u1"), as(ctx, "u2")

	if _, err := c.Start(u1, &shlyv1.StartRequest{}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Start(u2, &shlyv1.StartRequest{}); err != nil {
		t.Fatal(err)
	}
	rt.Engine().Wait()
	shown, err := c.Current(u2, &shlyv1.CurrentRequest{})
	if err != nil || shown.Key != "https://vk.com/k" {
		t.Fatalf("u2 shown %+v %v", shown, err)
	}

	if _, err := c.Verdict(u1, &shlyv1.VerdictRequest{Action: "reject"}); err != nil {
		t.Fatal(err)
	}
	rt.Engine().Wait()

	for _, req := range []*shlyv1.VerdictRequest{
		{Action: "reject", PresentationId: shown.PresentationId},
		{Action: "reject"},
	} {
		v, err := c.Verdict(u2, req)
		if err != nil || v.Status != "ignored" {
			t.Fatalf("verdict %+v: %+v %v", req, v, err)
		}
	}
	if rt.Engine().Retired("https://vk.com/m") {
		t.Fatalf("u2's verdict for k landed on m")
	}
}

func TestForeignVerdictIsDenied(t *testing.T) {
	conn, rt := newTestConn(t, "https://vk.com/a\n")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := shlyv1.NewReviewServiceClient(conn)
	if _, err := c.Start(as(ctx, "u1"), &shlyv1.StartRequest{}); err != nil {
		t.Fatal(err)
	}
	rt.Engine().Wait()
	_, err := c.Verdict(as(ctx, "u2"), &shlyv1.VerdictRequest{Owner: "u1", Action: "accept"})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("want PermissionDenied, got %v", err)
	}
}

func TestItemsImportAndListOverGRPC(t *testing.T) {
	conn, _ := newTestConn(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := shlyv1.NewReviewServiceClient(conn)
	imp, err := c.ImportItems(ctx, &shlyv1.ImportItemsRequest{List: "https://vk.com/a | Anna\nhttps://vk.com/b\n"})
	if err != nil || imp.Imported != 2 {
		t.Fatalf("import: %+v %v", imp, err)
	}
	list, err := c.ListItems(ctx, &shlyv1.ListItemsRequest{Limit: 1})
	if err != nil || list.Total != 2 || len(list.Items) != 1 || list.Items[0].Key != "https://vk.com/a" {
		t.Fatalf("list: %+v %v", list, err)
	}
}

func TestWatchDeliversPresentation(t *testing.T) {
	conn, rt := newTestConn(t, "https://vk.com/a\n")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := shlyv1.NewReviewServiceClient(conn)
	uctx := as(ctx, "u1")
	if _, err := c.Start(uctx, &shlyv1.StartRequest{}); err != nil {
		t.Fatal(err)
	}
	rt.Engine().Wait()

	stream, err := c.Watch(uctx, &shlyv1.WatchRequest{})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	ev, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if ev.Type != "present" || len(ev.Data) == 0 {
		t.Fatalf("event %+v", ev)
	}
}
