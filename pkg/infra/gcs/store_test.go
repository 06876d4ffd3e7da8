package gcs_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/slipway/pkg/infra/gcs"
)

func TestStore(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("Test GCS bucket not provided via environment variables")
	}

	ctx := context.Background()
	store, err := gcs.New(ctx, bucket, "slipway-test")
	gt.NoError(t, err)
	t.Cleanup(func() {
		gt.NoError(t, store.Close())
	})

	object := "sdist-" + time.Now().UTC().Format("20060102T150405") + ".tar.gz"
	location, err := store.Put(ctx, object, "application/gzip", strings.NewReader("not a real tarball"))
	gt.NoError(t, err)
	gt.Value(t, location).Equal("gs://" + bucket + "/slipway-test/" + object)
}
