package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"church-map/internal/model"
)

const batchSize = 250 // Stay well under Firestore's 500 operation limit

// Client wraps the Firestore client for state documents.
type Client struct {
	client     *firestore.Client
	collection string
}

// New creates a new Firestore client.
func New(ctx context.Context, projectID, collection string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Client{
		client:     client,
		collection: collection,
	}, nil
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Collection returns the collection name, for logging.
func (c *Client) Collection() string {
	return c.collection
}

// ReplaceStates replaces the whole collection with the given states.
// Document order is kept in a "position" field.
func (c *Client) ReplaceStates(ctx context.Context, states []model.State, batchID string) error {
	coll := c.client.Collection(c.collection)

	if err := c.deleteAll(ctx); err != nil {
		return fmt.Errorf("deleting existing states: %w", err)
	}

	for i := 0; i < len(states); i += batchSize {
		end := min(i+batchSize, len(states))
		batch := c.client.Batch()

		for pos := i; pos < end; pos++ {
			st := states[pos]
			batch.Set(coll.Doc(docID(st.ID)), stateToMap(st, pos, batchID))
		}

		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing batch: %w", err)
		}
	}
	return nil
}

func (c *Client) deleteAll(ctx context.Context) error {
	coll := c.client.Collection(c.collection)

	for {
		iter := coll.Limit(batchSize).Documents(ctx)
		batch := c.client.Batch()
		numDeleted := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("iterating documents: %w", err)
			}
			batch.Delete(doc.Ref)
			numDeleted++
		}

		if numDeleted == 0 {
			return nil
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing delete batch: %w", err)
		}
		if numDeleted < batchSize {
			return nil
		}
	}
}

// GetAllStates retrieves all states in their stored order.
func (c *Client) GetAllStates(ctx context.Context) ([]model.State, error) {
	var states []model.State

	iter := c.client.Collection(c.collection).OrderBy("position", firestore.Asc).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating documents: %w", err)
		}

		st, err := mapToState(doc.Data())
		if err != nil {
			return nil, fmt.Errorf("parsing document %s: %w", doc.Ref.ID, err)
		}
		states = append(states, st)
	}
	return states, nil
}

// docID hashes the state id so ids containing "/" stay valid document names.
func docID(id string) string {
	hash := sha256.Sum256([]byte(id))
	return hex.EncodeToString(hash[:16])
}
