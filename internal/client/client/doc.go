// Package client is the gRPC client of the FragKeeper object service.
//
// A GRPCClient attaches the configured access token to every call and maps
// gRPC status codes to the package's sentinel errors:
//
//	Unauthenticated, PermissionDenied  -> ErrUnauthorized
//	Unavailable, DeadlineExceeded      -> ErrUnavailable
//	NotFound                           -> ErrNotFound
//	DataLoss, FailedPrecondition       -> ErrCorrupted
package client
