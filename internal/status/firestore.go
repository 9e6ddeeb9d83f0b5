package status

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/financialdocumentflow/internal/models"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// FirestoreStore keeps one document per doc id in a Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func (f *FirestoreStore) ref(docID string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(docID)
}

func (f *FirestoreStore) Insert(ctx context.Context, st *models.DocumentStatus) error {
	_, err := f.ref(st.DocID).Create(ctx, st)
	if grpcstatus.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("%w: %s", ErrDuplicate, st.DocID)
	}
	if err != nil {
		return fmt.Errorf("failed to create status document: %w", err)
	}
	return nil
}

func (f *FirestoreStore) Get(ctx context.Context, docID string) (*models.DocumentStatus, error) {
	snap, err := f.ref(docID).Get(ctx)
	if grpcstatus.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status document: %w", err)
	}
	var st models.DocumentStatus
	if err := snap.DataTo(&st); err != nil {
		return nil, fmt.Errorf("failed to decode status document: %w", err)
	}
	return &st, nil
}

// LatestByFilename queries by filename and picks the newest upload client
// side, so no composite index is needed.
func (f *FirestoreStore) LatestByFilename(ctx context.Context, filename string) (*models.DocumentStatus, error) {
	docs, err := f.client.Collection(f.collection).Where("filename", "==", filename).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query status by filename: %w", err)
	}
	var latest *models.DocumentStatus
	for _, doc := range docs {
		var st models.DocumentStatus
		if err := doc.DataTo(&st); err != nil {
			return nil, fmt.Errorf("failed to decode status document %s: %w", doc.Ref.ID, err)
		}
		if latest == nil || !st.UploadedAt.Before(latest.UploadedAt) {
			latest = &st
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return latest, nil
}

func (f *FirestoreStore) Update(ctx context.Context, docID string, fn func(*models.DocumentStatus) error) (*models.DocumentStatus, error) {
	ref := f.ref(docID)
	var out models.DocumentStatus
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if grpcstatus.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, docID)
		}
		if err != nil {
			return err
		}
		var st models.DocumentStatus
		if err := snap.DataTo(&st); err != nil {
			return fmt.Errorf("failed to decode status document: %w", err)
		}
		if err := fn(&st); err != nil {
			return err
		}
		out = st
		return tx.Set(ref, &st)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *FirestoreStore) Close() error { return f.client.Close() }
