package port

import "context"

// Lock is a held mutual-exclusion lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serialises writers of a shared resource identified by key.
type Locker interface {
	Obtain(ctx context.Context, key string) (Lock, error)
}
