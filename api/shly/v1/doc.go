// Package shlyv1 defines the gRPC API of the shly server: the review control
// surface, the per-consumer notification stream and a health check.
//
// Messages are plain Go structs carried by a JSON codec registered under
// CodecName, so the package needs no generated protobuf code. Clients built
// with NewReviewServiceClient and NewHealthServiceClient select the codec on
// every call; other clients must pass grpc.CallContentSubtype(CodecName).
// The caller identity travels in the ConsumerMetadataKey metadata entry.
package shlyv1
