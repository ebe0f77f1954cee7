package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"jobtracker/tracker-service/internal/auth"
	"jobtracker/tracker-service/internal/config"
	"jobtracker/tracker-service/internal/db"
	"jobtracker/tracker-service/internal/events"
	"jobtracker/tracker-service/internal/store/memory"
	"jobtracker/tracker-service/internal/store/mysql"
	"jobtracker/tracker-service/internal/store/postgres"
	"jobtracker/tracker-service/internal/store/sqlite"
	"jobtracker/tracker-service/internal/tracker"
)

// runtime is the wired dependency graph for one command invocation.
type runtime struct {
	cfg     *config.Config
	store   tracker.Store
	migrate func(context.Context) error
	svc     *tracker.Service
	rdb     *redis.Client
	closers []func()
}

// openRuntime loads configuration, connects to the configured store and,
// when REDIS_URL is set, to Redis.
func openRuntime(ctx context.Context, opts *RootOptions) (*runtime, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.ConfigureLogging()

	rt := &runtime{cfg: cfg}
	if err := rt.openStore(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	var pub tracker.Publisher
	if cfg.RedisURL != "" {
		log.WithField("component", "redis").Info("connecting")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		rt.rdb = rdb
		rt.closers = append(rt.closers, func() { rdb.Close() })
		pub = events.NewRedisPublisher(rdb)
	}

	rt.svc = tracker.NewService(rt.store, pub)
	return rt, nil
}

func (rt *runtime) openStore(ctx context.Context) error {
	cfg := rt.cfg
	logger := log.WithFields(log.Fields{"component": "store", "driver": cfg.DatabaseDriver})
	logger.Info("connecting")

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		s := postgres.New(pool)
		rt.store, rt.migrate = s, s.Migrate

	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		rt.closers = append(rt.closers, func() { s.Close() })
		rt.store, rt.migrate = s, s.Migrate

	case config.DriverMySQL:
		gdb, err := db.NewMySQL(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("mysql: %w", err)
		}
		rt.closers = append(rt.closers, func() { db.CloseGorm(gdb) })
		s := mysql.New(gdb)
		rt.store, rt.migrate = s, s.Migrate

	case config.DriverMemory:
		rt.store = memory.New()
		rt.migrate = func(context.Context) error { return nil }

	default:
		return fmt.Errorf("unsupported driver %q", cfg.DatabaseDriver)
	}

	logger.Info("connected")
	return nil
}

// resolver builds the HTTP authentication chain from configuration.
func (rt *runtime) resolver() auth.Resolver {
	var chain auth.Chain
	if s := rt.sessions(); s != nil {
		chain = append(chain, s)
	}
	if rt.cfg.TrustUserHeader {
		chain = append(chain, auth.HeaderResolver{})
	}
	return chain
}

func (rt *runtime) sessions() *auth.SessionResolver {
	if rt.rdb == nil {
		return nil
	}
	return auth.NewSessionResolver(rt.rdb, rt.cfg.SessionCookie)
}

// Close releases connections in reverse order of opening.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
