package transport

import (
	"context"
	"io"
)

// Transport is the narrow object-store capability the engine consumes.
// Implementations must honor HTTP-style inclusive byte ranges.
type Transport interface {
	// Head returns the total size in bytes of the object.
	Head(ctx context.Context, bucket, key string) (int64, error)
	// GetRange fetches bytes [start, end] (inclusive) of the object. It
	// returns the server-reported content length and the body stream. The
	// caller owns the stream and must close it.
	GetRange(ctx context.Context, bucket, key string, start, end int64) (int64, io.ReadCloser, error)
}
