package di

import (
	"fmt"
	"net/http"

	"github.com/aristath/allocator/internal/clientdata"
	"github.com/aristath/allocator/internal/clients/yahoo"
	"github.com/aristath/allocator/internal/config"
	"github.com/aristath/allocator/internal/modules/allocation"
	"github.com/rs/zerolog"
)

// InitializeServices creates repositories, upstream clients and the allocation engine
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.CacheDB == nil {
		return fmt.Errorf("container has no cache database")
	}

	container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())

	container.YahooClient = yahoo.NewClient(log,
		yahoo.WithBaseURL(cfg.YahooBaseURL),
		yahoo.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
		yahoo.WithRateLimit(cfg.UpstreamRateLimit),
		yahoo.WithHistoryRange(cfg.HistoryRange),
		yahoo.WithCache(container.ClientDataRepo, cfg.HistoryCacheTTL, cfg.QuoteCacheTTL),
	)

	container.AllocationEngine = allocation.NewEngine(log)

	return nil
}
