package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/lessonlab/tutor/internal/db"
)

// HSetMulti stores multiple hashes in a single DoMulti round-trip. Ingestion
// relies on this to commit a whole chunk batch in one shot: a request
// cancelled before the call leaves nothing behind.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}
