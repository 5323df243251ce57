package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/cache"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/logic"
	"github.com/tqt95/app-react-jpa/internal/metrics"
	"github.com/tqt95/app-react-jpa/internal/service"
	"github.com/tqt95/app-react-jpa/internal/sql"
	"github.com/tqt95/app-react-jpa/internal/utilities"

	"github.com/antonio-alexander/go-stash/memory"
	"github.com/antonio-alexander/go-stash/redis"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	envs := internal.Envs(os.Environ())
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func createSql(envs map[string]string, parameters ...any) (interface {
	internal.Configurer
	internal.Opener
	sql.Sql
}, error) {
	switch databaseType := envs["DATABASE_TYPE"]; databaseType {
	default:
		return nil, errors.Errorf("unsupported database type: %s", databaseType)
	case "", "mysql":
		return sql.NewMySql(parameters...), nil
	case "memory":
		return sql.NewMemory(parameters...), nil
	}
}

// createCache returns the cache named by CACHE_TYPE, or nil when none is
// configured; stashes are configured along with the cache.
func createCache(envs map[string]string, parameters ...any) (interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	cache.Cache
}, error) {
	switch cacheType := envs["CACHE_TYPE"]; cacheType {
	default:
		return nil, errors.Errorf("unsupported cache type: %s", cacheType)
	case "":
		return nil, nil
	case "memory":
		return cache.NewMemory(parameters...), nil
	case "redis":
		return cache.NewRedis(parameters...), nil
	case "stash-memory":
		return cache.NewStash(append(parameters, memory.New())...), nil
	case "stash-redis":
		return cache.NewStash(append(parameters, redis.New())...), nil
	}
}

func Main(envs map[string]string, osSignal chan os.Signal) error {
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create utilities
	logger := utilities.NewLogger()
	if err := logger.Configure(envs); err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := metrics.NewMetrics(registry)

	//print version info
	logger.Info(ctx, "server: employees v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	//create sql, configure and open
	sql, err := createSql(envs, logger, metrics)
	if err != nil {
		return err
	}
	if err := sql.Configure(envs); err != nil {
		return err
	}
	if err := sql.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sql.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "error while closing sql: %s", err)
		}
	}()

	// create cache
	cache, err := createCache(envs, logger)
	if err != nil {
		return err
	}
	if cache != nil {
		if err := cache.Configure(envs); err != nil {
			return err
		}
		if err := cache.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(context.Background()); err != nil {
				logger.Error(context.Background(), "error while closing cache: %s", err)
			}
		}()
	}

	//create logic, configure and open
	parameters := []any{sql, logger, metrics}
	if cache != nil {
		parameters = append(parameters, cache)
	}
	logic := logic.NewLogic(parameters...)
	if err := logic.Configure(envs); err != nil {
		return err
	}
	if err := logic.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := logic.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "error while closing logic: %s", err)
		}
	}()

	//create service, configure and open
	parameters = []any{logic, sql, metrics, registry, logger}
	if cache != nil {
		parameters = append(parameters, cache)
	}
	service := service.NewService(parameters...)
	if err := service.Configure(envs); err != nil {
		return err
	}
	if err := service.Open(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	wg.Wait()
	if err := service.Close(context.Background()); err != nil {
		logger.Error(context.Background(), "error while closing service: %s", err)
	}
	return nil
}
