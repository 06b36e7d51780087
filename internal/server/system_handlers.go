package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/allocator/internal/clientdata"
	"github.com/aristath/allocator/internal/database"
	"github.com/aristath/allocator/internal/scheduler"
)

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string           `json:"status"`
	UptimeSeconds float64          `json:"uptime_seconds"`
	CPUPercent    float64          `json:"cpu_percent"`
	MemoryPercent float64          `json:"memory_percent"`
	GoVersion     string           `json:"go_version"`
	Goroutines    int              `json:"goroutines"`
	Database      string           `json:"database"`
	CacheEntries  map[string]int64 `json:"cache_entries,omitempty"`
}

// SystemHandlers serves process and cache status plus manual job triggers
type SystemHandlers struct {
	log         zerolog.Logger
	cacheDB     *database.DB
	startupTime time.Time
	jobs        map[string]scheduler.Job
}

// NewSystemHandlers creates system handlers. cacheDB may be nil.
func NewSystemHandlers(log zerolog.Logger, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		cacheDB:     cacheDB,
		startupTime: time.Now(),
		jobs:        make(map[string]scheduler.Job),
	}
}

// SetJobs registers jobs that can be triggered by name
func (h *SystemHandlers) SetJobs(jobs ...scheduler.Job) {
	for _, job := range jobs {
		if job != nil {
			h.jobs[job.Name()] = job
		}
	}
}

// HandleSystemStatus returns process, host and cache status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()
	response := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
		Database:      "unavailable",
	}

	if h.cacheDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.cacheDB.QuickCheck(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Cache database check failed")
			response.Status = "degraded"
		} else {
			response.Database = "ok"
			response.CacheEntries = h.cacheEntries()
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown job %q", name)})
		return
	}

	h.log.Info().Str("job", name).Msg("Manually triggering job")
	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Job failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "success", "job": name})
}

func (h *SystemHandlers) cacheEntries() map[string]int64 {
	counts := make(map[string]int64, len(clientdata.AllTables))
	for _, table := range clientdata.AllTables {
		var n int64
		// table names come from a fixed list
		if err := h.cacheDB.Conn().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			h.log.Warn().Err(err).Str("table", table).Msg("Failed to count cache entries")
			continue
		}
		counts[table] = n
	}
	return counts
}

// getSystemStats returns CPU and RAM usage percentages.
// The 100ms CPU sample keeps the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
