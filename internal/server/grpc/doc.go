// Package grpcserver serves the review control surface and notification
// stream over gRPC, next to the HTTP gateway and over the same runtime.
//
// Usage:
//
//	srv := grpcserver.New(rt, logger)
//	go srv.ListenAndServe(ctx, ":50051")
package grpcserver
