package port

import (
	"context"
	"io"
)

// PutInput encapsulates the parameters needed to store an artifact, such as
// a generated production document.
type PutInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// PutOutput contains the result of a successful store.
type PutOutput struct {
	Ref string // stable reference recorded on the order (path or object URL)
}

// ArtifactStore abstracts where generated documents live: local disk in a
// single-machine install, S3 when configured.
type ArtifactStore interface {
	Put(ctx context.Context, input PutInput) (*PutOutput, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
