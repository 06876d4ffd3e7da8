package gcs

import (
	"context"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Store archives built artifacts in a Cloud Storage bucket so they outlive
// the run's temp directory.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a Cloud Storage backed artifact store. Credentials come from
// the ambient environment.
func New(ctx context.Context, bucket, prefix string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Close releases the underlying client.
func (x *Store) Close() error {
	return x.client.Close()
}

// Put stores the content under the object name and returns the gs://
// location of the written object.
func (x *Store) Put(ctx context.Context, object, contentType string, r io.Reader) (string, error) {
	name := object
	if x.prefix != "" {
		name = path.Join(x.prefix, object)
	}

	w := x.client.Bucket(x.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object",
			goerr.V("bucket", x.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize object",
			goerr.V("bucket", x.bucket), goerr.V("object", name))
	}

	return "gs://" + x.bucket + "/" + name, nil
}
