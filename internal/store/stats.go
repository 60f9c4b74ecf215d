package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string            `json:"db_path"`
	DBSizeBytes int64             `json:"db_size_bytes"`
	Collections []CollectionStats `json:"collections"`
}

// CollectionStats holds per-collection counts.
type CollectionStats struct {
	Name  Collection `json:"name"`
	Count int        `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	for _, c := range Collections {
		var n int
		err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, c)).Scan(&n)
		if err != nil {
			return st, unavailable("count "+string(c), err)
		}
		st.Collections = append(st.Collections, CollectionStats{Name: c, Count: n})
	}

	return st, nil
}
