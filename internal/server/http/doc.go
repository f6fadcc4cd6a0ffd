// Package httpserver provides the REST gateway for shly: the review control
// surface, a per-consumer Server-Sent Events stream and admin item
// endpoints. The caller identity travels in the X-Consumer-ID header.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
