package client

import (
	"bytes"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "github.com/MagicGod/shly/internal/config"
	"github.com/MagicGod/shly/internal/runtime"
	grpcserver "github.com/MagicGod/shly/internal/server/grpc"
	httpserver "github.com/MagicGod/shly/internal/server/http"
)

func keepOrder(int, func(i, j int)) {}

// startServer runs a real HTTP gateway over a file-backed runtime.
func startServer(t *testing.T, list string) (BaseURLFunc, *runtime.Runtime) {
	t.Helper()
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.DataDir = dir
	cfg.Store.File = filepath.Join(dir, "profiles.txt")
	cfg.Fetch.Enabled = false
	if err := os.WriteFile(cfg.Store.File, []byte(list), 0o644); err != nil {
		t.Fatal(err)
	}
	rt, err := runtime.Open(runtime.Options{Config: cfg, Shuffle: keepOrder})
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	srv := httptest.NewServer(httpserver.New(rt, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = rt.Close()
	})
	return func() string { return srv.URL }, rt
}

func execute(t *testing.T, baseURL BaseURLFunc, args ...string) string {
	t.Helper()
	cmd := NewRoot(baseURL)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, buf.String())
	}
	return buf.String()
}

func TestReviewCommands(t *testing.T) {
	base, rt := startServer(t, "https://vk.com/a | Anna\nhttps://vk.com/b\n")

	out := execute(t, base, "review", "start", "--consumer", "u1")
	if !strings.Contains(out, "Items in queue: 2") {
		t.Fatalf("start output: %s", out)
	}
	rt.Engine().Wait()

	out = execute(t, base, "review", "status", "--consumer", "u1")
	if !strings.Contains(out, "In queue: 2") || !strings.Contains(out, "Current: https://vk.com/a") {
		t.Fatalf("status output: %s", out)
	}

	out = execute(t, base, "review", "accept", "--consumer", "u1")
	if !strings.Contains(out, "applied: accept") {
		t.Fatalf("accept output: %s", out)
	}
	rt.Engine().Wait()

	out = execute(t, base, "review", "accept", "--consumer", "u1", "--presentation", "stale")
	if !strings.Contains(out, "Ignored") {
		t.Fatalf("stale output: %s", out)
	}

	out = execute(t, base, "review", "accepted", "--consumer", "u1")
	if !strings.Contains(out, "https://vk.com/a") {
		t.Fatalf("accepted output: %s", out)
	}

	out = execute(t, base, "review", "reject", "--consumer", "u1")
	if !strings.Contains(out, "applied: reject") {
		t.Fatalf("reject output: %s", out)
	}
	rt.Engine().Wait()

	out = execute(t, base, "items", "list")
	if !strings.Contains(out, "[x] https://vk.com/a | Anna") || strings.Contains(out, "vk.com/b") {
		t.Fatalf("items output: %s", out)
	}
}

func TestSkipBindsToLatestPresentation(t *testing.T) {
	base, rt := startServer(t, "https://vk.com/a\nhttps://vk.com/b\nhttps://vk.com/c\n")
	execute(t, base, "review", "start", "--consumer", "u1")
	rt.Engine().Wait()

	out := execute(t, base, "review", "skip", "--consumer", "u1")
	if !strings.Contains(out, "Current: https://vk.com/b") {
		t.Fatalf("skip output: %s", out)
	}
	rt.Engine().Wait()

	out = execute(t, base, "review", "skip", "--consumer", "u1", "--presentation", "stale")
	if !strings.Contains(out, "Ignored") {
		t.Fatalf("stale skip output: %s", out)
	}
	if cur := rt.Engine().Status("u1").Current; cur != "https://vk.com/b" {
		t.Fatalf("stale skip moved the queue to %q", cur)
	}
}

func TestReviewCommandsOverGRPC(t *testing.T) {
	base, rt := startServer(t, "https://vk.com/a | Anna\nhttps://vk.com/b\n")
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	gsrv := grpcserver.New(rt, nil)
	go func() { _ = gsrv.Serve(lis) }()
	t.Cleanup(gsrv.Close)
	t.Setenv("SHLY_TRANSPORT", "grpc")
	t.Setenv("SHLY_GRPC", lis.Addr().String())

	out := execute(t, base, "review", "start", "--consumer", "u1")
	if !strings.Contains(out, "Items in queue: 2") {
		t.Fatalf("start output: %s", out)
	}
	rt.Engine().Wait()

	out = execute(t, base, "review", "accept", "--consumer", "u1")
	if !strings.Contains(out, "applied: accept") {
		t.Fatalf("accept output: %s", out)
	}
	rt.Engine().Wait()

	out = execute(t, base, "review", "skip", "--consumer", "u1", "--presentation", "stale")
	if !strings.Contains(out, "Ignored") {
		t.Fatalf("stale skip output: %s", out)
	}

	out = execute(t, base, "review", "watch", "--consumer", "u1", "--limit", "1")
	if !strings.Contains(out, "https://vk.com/b") {
		t.Fatalf("watch output: %s", out)
	}

	out = execute(t, base, "items", "list")
	if !strings.Contains(out, "[x] https://vk.com/a | Anna") {
		t.Fatalf("items output: %s", out)
	}
}

func TestVerdictForeignSessionFails(t *testing.T) {
	base, rt := startServer(t, "https://vk.com/a\n")
	execute(t, base, "review", "start", "--consumer", "u1")
	rt.Engine().Wait()

	cmd := NewRoot(base)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"review", "reject", "--consumer", "u2", "--owner", "u1"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "not your session") {
		t.Fatalf("expected refusal, got %v", err)
	}
}

func TestStartWithEmptyList(t *testing.T) {
	base, _ := startServer(t, "")
	out := execute(t, base, "review", "start", "--consumer", "u1")
	if !strings.Contains(out, "No items available") {
		t.Fatalf("output: %s", out)
	}
}

func TestItemsImport(t *testing.T) {
	base, _ := startServer(t, "")
	list := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(list, []byte("https://vk.com/x | X\nhttps://vk.com/y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := execute(t, base, "items", "import", "--file", list)
	if !strings.Contains(out, "imported: 2") {
		t.Fatalf("import output: %s", out)
	}
	out = execute(t, base, "items", "list", "--limit", "1")
	if !strings.Contains(out, "https://vk.com/x | X") || !strings.Contains(out, "total: 2") {
		t.Fatalf("list output: %s", out)
	}
}

func TestWatchPrintsOutstandingPresentation(t *testing.T) {
	base, rt := startServer(t, "https://vk.com/a | Anna\n")
	execute(t, base, "review", "start", "--consumer", "u1")
	rt.Engine().Wait()

	out := execute(t, base, "review", "watch", "--consumer", "u1", "--limit", "1")
	if !strings.Contains(out, "Anna") || !strings.Contains(out, "1 remaining in queue") || !strings.Contains(out, "accept | reject | skip") {
		t.Fatalf("watch output: %s", out)
	}
}

func TestFormatCompletion(t *testing.T) {
	if got := formatCompletion(0, nil); !strings.HasSuffix(got, "None.") {
		t.Fatalf("empty completion %q", got)
	}
	got := formatCompletion(2, []string{"a", "b"})
	if !strings.Contains(got, "Accepted: 2") || !strings.HasSuffix(got, "a\nb") {
		t.Fatalf("completion %q", got)
	}
}
