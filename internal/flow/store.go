package flow

import "context"

// Store persists flow sessions. Implementations return sentinel.ErrNotFound
// for unknown tokens.
type Store interface {
	Save(ctx context.Context, state *State) error
	Find(ctx context.Context, token string) (*State, error)
	Delete(ctx context.Context, token string) error
}

// KioskKeys exposes the per-location terminal credential. Terminal flows may
// only start from a kiosk that proves possession of its location's key.
type KioskKeys interface {
	KioskKeyHash(ctx context.Context, locationID int64) (string, error)
}
