package redis

import (
	"context"

	"github.com/prof-ramos/sherlock/internal/db"
)

// HGetAll retrieves all hash fields for a key.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	fields, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	if len(fields) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return fields, nil
}
