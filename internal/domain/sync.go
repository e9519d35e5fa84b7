package domain

import "time"

// SyncStats holds statistics about a sync operation.
type SyncStats struct {
	SourceID   string
	Fetched    int
	New        int
	Skipped    int
	Errors     int
	Published  int
	Categories map[Category]int
	Duration   time.Duration
}

type SyncState struct {
	ID           int64     `db:"id"`
	SourceID     string    `db:"source_id"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	TotalSynced  int64     `db:"total_synced"`
}
