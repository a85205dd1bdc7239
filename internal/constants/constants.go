package constants

import "time"

const (
	// ScrapeMinDelay is the minimum pause between requests to the
	// source site, to stay polite to the origin.
	ScrapeMinDelay = 1 * time.Second

	ScrapeTimeout   = 30 * time.Second
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 60 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// ReconstructParallelism caps concurrent per-team reconstruction
	// runs; teams share no mutable state, so this only bounds load.
	ReconstructParallelism = 4

	SnapshotHistoryLimit = 50
)
