package di

import (
	"fmt"

	"github.com/aristath/allocator/internal/clientdata"
	"github.com/aristath/allocator/internal/config"
	"github.com/aristath/allocator/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the maintenance jobs and schedules them.
// The scheduler is created but not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		CacheCleanup:  clientdata.NewCleanupJob(container.ClientDataRepo, log),
		WALCheckpoint: scheduler.NewWALCheckpointJob(container.CacheDB, log),
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.CacheCleanupSchedule, instances.CacheCleanup); err != nil {
		return nil, err
	}
	if err := sched.AddJob(cfg.WALCheckpointSchedule, instances.WALCheckpoint); err != nil {
		return nil, err
	}
	container.Scheduler = sched

	return instances, nil
}
