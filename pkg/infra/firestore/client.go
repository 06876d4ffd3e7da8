package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// Client stores publish run records in a Firestore collection, keyed by
// run ID.
type Client struct {
	client     *firestore.Client
	collection string
}

// New creates a Firestore backed run repository.
func New(ctx context.Context, projectID, collection string) (*Client, error) {
	fsClient, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client", goerr.V("project_id", projectID))
	}

	return &Client{
		client:     fsClient,
		collection: collection,
	}, nil
}

// Close releases the underlying client.
func (x *Client) Close() error {
	return x.client.Close()
}

// Put writes the run record, overwriting any previous state of the same run.
func (x *Client) Put(ctx context.Context, run *model.PublishRun) error {
	if _, err := x.client.Collection(x.collection).Doc(run.ID.String()).Set(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to save run record", goerr.V("run_id", run.ID))
	}
	return nil
}

// Get returns the run record, or (nil, nil) when the ID is unknown.
func (x *Client) Get(ctx context.Context, id types.RunID) (*model.PublishRun, error) {
	doc, err := x.client.Collection(x.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get run record", goerr.V("run_id", id))
	}

	var run model.PublishRun
	if err := doc.DataTo(&run); err != nil {
		return nil, goerr.Wrap(err, "failed to decode run record", goerr.V("run_id", id))
	}

	return &run, nil
}

// List returns up to limit run records, newest first.
func (x *Client) List(ctx context.Context, limit int) ([]*model.PublishRun, error) {
	q := x.client.Collection(x.collection).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var runs []*model.PublishRun
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate run records")
		}

		var run model.PublishRun
		if err := doc.DataTo(&run); err != nil {
			return nil, goerr.Wrap(err, "failed to decode run record", goerr.V("doc_id", doc.Ref.ID))
		}
		runs = append(runs, &run)
	}

	return runs, nil
}
