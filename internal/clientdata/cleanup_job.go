package clientdata

import (
	"sort"

	"github.com/rs/zerolog"
)

// CacheCleanupJobName is the scheduler name of the expiry sweep.
const CacheCleanupJobName = "cache_cleanup"

// CleanupJob sweeps expired price history and quote entries out of the cache database.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", CacheCleanupJobName).Logger(),
	}
}

// Run deletes every expired cache entry and logs one summary line per sweep.
// Tables are reported in name order.
func (j *CleanupJob) Run() error {
	deleted, err := j.repo.DeleteAllExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to sweep expired cache entries")
		return err
	}

	tables := make([]string, 0, len(deleted))
	for table := range deleted {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	perTable := zerolog.Dict()
	var total int64
	for _, table := range tables {
		perTable.Int64(table, deleted[table])
		total += deleted[table]
	}

	if total == 0 {
		j.log.Debug().Msg("Cache sweep found nothing expired")
		return nil
	}
	j.log.Info().
		Dict("deleted", perTable).
		Int64("total_deleted", total).
		Msg("Cache sweep completed")
	return nil
}

func (j *CleanupJob) Name() string {
	return CacheCleanupJobName
}
