// Package runtime wires the item store, notification hub, fetcher and
// review engine into a single-node shly instance. It exposes Open/Close and
// a basic health check used by the HTTP server.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	n := rt.Engine().Start(context.Background(), "reviewer-1")
package runtime
