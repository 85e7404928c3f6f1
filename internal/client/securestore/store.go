package securestore

import "context"

// Store is the secure key-value contract consumed by the credential cache
// and the biometric gate.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// BatchDeleter is implemented by stores that can drop several keys at once.
type BatchDeleter interface {
	DeleteMany(ctx context.Context, keys ...string) error
}

// DeleteAll removes keys from s, in one batch when s supports it.
func DeleteAll(ctx context.Context, s Store, keys ...string) error {
	if bd, ok := s.(BatchDeleter); ok {
		return bd.DeleteMany(ctx, keys...)
	}
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
