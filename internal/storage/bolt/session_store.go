package bolt

import (
	"context"

	"github.com/sweatlock/sweatlock/internal/storage"
	"go.etcd.io/bbolt"
)

type sessionStore struct {
	db *bbolt.DB
}

func (s *sessionStore) Get(ctx context.Context) (*storage.SessionRecord, error) {
	return getBucketValue[storage.SessionRecord](ctx, s.db, bucketSession, sessionKey)
}

func (s *sessionStore) Put(ctx context.Context, record storage.SessionRecord) error {
	return putBucketValue(ctx, s.db, bucketSession, sessionKey, record)
}

func (s *sessionStore) Clear(ctx context.Context) error {
	return deleteBucketValue(ctx, s.db, bucketSession, sessionKey)
}
