package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	transports "github.com/MagicGod/shly/internal/cmd/client/transports"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// consumerFromEnv returns the reviewer identity from SHLY_CONSUMER or the
// login name.
func consumerFromEnv() string {
	if v := os.Getenv("SHLY_CONSUMER"); v != "" {
		return v
	}
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	return "anonymous"
}

// grpcAddrFromEnv returns the gRPC server address from SHLY_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("SHLY_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPCContext dials the shly gRPC endpoint with insecure transport for local/dev.
func dialGRPCContext(_ context.Context) (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// newTransport picks the gRPC transport when SHLY_TRANSPORT=grpc and the
// HTTP transport for baseURL otherwise.
var newTransport = func(baseURL BaseURLFunc) transports.ReviewTransport {
	if os.Getenv("SHLY_TRANSPORT") == "grpc" {
		return transports.NewGrpcTransport(dialGRPCContext)
	}
	return transports.NewHttpTransport(baseURL(), nil)
}

// presentation is the subset of a present event the CLI renders.
type presentation struct {
	PresentationID string `json:"presentation_id"`
	Key            string `json:"key"`
	Caption        string `json:"caption"`
	Degraded       bool   `json:"degraded"`
	Media          *struct {
		Data        []byte `json:"data"`
		ContentType string `json:"content_type"`
	} `json:"media"`
}

// printEvent writes a human-readable rendering of ev. Media bytes are
// summarized, or written to mediaDir when set.
func printEvent(w io.Writer, ev transports.Event, mediaDir string) error {
	switch ev.Type {
	case "present":
		var p presentation
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return err
		}
		fmt.Fprintf(w, "--- %s\n%s\n", p.PresentationID, p.Caption)
		if p.Media != nil {
			if path, err := saveMedia(mediaDir, p.PresentationID, p.Media.Data); err != nil {
				return err
			} else if path != "" {
				fmt.Fprintf(w, "[image %s, %d bytes: %s]\n", p.Media.ContentType, len(p.Media.Data), path)
			} else {
				fmt.Fprintf(w, "[image %s, %d bytes]\n", p.Media.ContentType, len(p.Media.Data))
			}
		}
		fmt.Fprintln(w, "accept | reject | skip")
	case "complete":
		var c struct {
			AcceptedCount int      `json:"accepted_count"`
			Accepted      []string `json:"accepted"`
		}
		if err := json.Unmarshal(ev.Data, &c); err != nil {
			return err
		}
		fmt.Fprintln(w, formatCompletion(c.AcceptedCount, c.Accepted))
	case "notice":
		var n struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(ev.Data, &n); err != nil {
			return err
		}
		fmt.Fprintln(w, n.Text)
	default:
		fmt.Fprintf(w, "%s: %s\n", ev.Type, ev.Data)
	}
	return nil
}

func formatCompletion(count int, accepted []string) string {
	s := fmt.Sprintf("Review complete!\nAccepted: %d\n\n", count)
	if len(accepted) == 0 {
		return s + "None."
	}
	for i, k := range accepted {
		if i > 0 {
			s += "\n"
		}
		s += k
	}
	return s
}

func saveMedia(dir, name string, data []byte) (string, error) {
	if dir == "" {
		return "", nil
	}
	path := filepath.Join(dir, name+".img")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save media: %w", err)
	}
	return path, nil
}
