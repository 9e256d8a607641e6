package firestore

import (
	"context"
	"fmt"
	"log"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"notifyd/internal/domain/dispatch"
)

// Listener watches the notifications collection and runs the dispatch
// pipeline for every newly created document, mirroring a store-level
// on-create trigger. Delivery is at-least-once: a dispatch failure is
// logged and the listener moves on, leaving retries to re-created records.
type Listener struct {
	client     *fs.Client
	collection string
	pipeline   *dispatch.Pipeline
}

func NewListener(client *fs.Client, collection string, pipeline *dispatch.Pipeline) *Listener {
	return &Listener{client: client, collection: collection, pipeline: pipeline}
}

// Run blocks until ctx is cancelled or the snapshot stream fails.
func (l *Listener) Run(ctx context.Context) error {
	it := l.client.Collection(l.collection).Snapshots(ctx)
	defer it.Stop()

	log.Printf("Listening for new notifications in collection %q", l.collection)

	// The first snapshot replays every existing document as an add; only
	// documents created after that point should be dispatched.
	first := true
	for {
		snap, err := it.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notification listener stopped: %w", err)
		}

		if first {
			first = false
			continue
		}

		for _, change := range snap.Changes {
			if change.Kind != fs.DocumentAdded {
				continue
			}

			record := recordFromDoc(change.Doc)
			if _, err := l.pipeline.Dispatch(ctx, record); err != nil {
				log.Printf("Dispatch failed for notification %s: %v", record.ID, err)
			}
		}
	}
}

func recordFromDoc(doc *fs.DocumentSnapshot) *dispatch.Record {
	var data struct {
		UserID  string         `firestore:"userId"`
		Title   string         `firestore:"title"`
		Message string         `firestore:"message"`
		Data    map[string]any `firestore:"data"`
	}
	if err := doc.DataTo(&data); err != nil {
		log.Printf("Failed to decode notification %s: %v", doc.Ref.ID, err)
		return &dispatch.Record{ID: doc.Ref.ID}
	}

	return &dispatch.Record{
		ID:      doc.Ref.ID,
		UserID:  data.UserID,
		Title:   data.Title,
		Message: data.Message,
		Data:    data.Data,
	}
}
