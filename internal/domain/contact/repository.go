package contact

import "context"

// Repository defines persistence for contact sync. Upsert is keyed by the
// (user_id, phone) uniqueness constraint; there is no conflict policy
// beyond last-write-wins on the name.
type Repository interface {
	BulkUpsert(ctx context.Context, userID string, contacts []SyncContact) (int, error)
	ListByUserID(ctx context.Context, userID string) ([]*Contact, error)
	DeleteAll(ctx context.Context, userID string) error
	FindByPhone(ctx context.Context, userID, phone string) (*Contact, error)
}
