package di

import (
	"fmt"
	"time"

	"SignalDesk/internal/catalog"
	"SignalDesk/internal/domain/repository"
	"SignalDesk/internal/domain/service"
	"SignalDesk/internal/handler/api"
	internalrepo "SignalDesk/internal/repository"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/service/settlement"
	"SignalDesk/internal/services/scoring"
	"SignalDesk/internal/usecase"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"
	pkgkafka "SignalDesk/pkg/kafka"
	applogger "SignalDesk/pkg/logger"
	"SignalDesk/pkg/metrics"
	pkgredis "SignalDesk/pkg/redis"
	"SignalDesk/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger from the logger config section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op one when metrics are disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}
	}
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideClock returns the wall clock.
func ProvideClock() usecase.Clock { return time.Now }

// ProvideCatalog loads the embedded asset catalog.
func ProvideCatalog() (*catalog.Catalog, error) {
	return catalog.Default()
}

// ProvideScorer creates the configured confidence scorer.
func ProvideScorer(cfg *config.Config) (service.ConfidenceScorer, error) {
	return scoring.New(cfg)
}

// ProvideTimeframePolicy builds the timeframe policy from the engine config.
func ProvideTimeframePolicy(cfg *config.Config) repository.TimeframePolicy {
	return repository.NewTimeframePolicy(cfg.Engine.TimeframeSelection, cfg.Engine.AllowedTimeframes, cfg.Engine.DefaultTimeframe)
}

// ProvideHistory creates the bounded signal history.
func ProvideHistory(cfg *config.Config) *usecase.SignalHistory {
	return usecase.NewSignalHistory(cfg.Engine.HistoryCapacity)
}

// ProvideEventPublisher creates the lifecycle event publisher for the configured backend.
func ProvideEventPublisher(cfg *config.Config, l *applogger.Logger) (repository.EventPublisher, error) {
	switch cfg.Events.Backend {
	case "kafka":
		k := cfg.Events.Kafka
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(k.Brokers),
			pkgkafka.WithTopic(k.Topic),
			pkgkafka.WithCompression(k.Compression),
			pkgkafka.WithRequiredAcks(k.RequiredAcks),
			pkgkafka.WithMaxAttempts(k.MaxAttempts),
			pkgkafka.WithBatchTimeout(k.BatchTimeout),
			pkgkafka.WithWriteTimeout(k.WriteTimeout),
			pkgkafka.WithAsync(k.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		l.Info("events: kafka", applogger.Strings("brokers", k.Brokers), applogger.String("topic", producer.Topic()))
		return internalrepo.NewKafkaEventPublisher(producer), nil
	case "redis":
		r := cfg.Events.Redis
		client, err := pkgredis.NewClient(
			pkgredis.WithAddr(r.Addr),
			pkgredis.WithPassword(r.Password),
			pkgredis.WithDB(r.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis client: %w", err)
		}
		l.Info("events: redis", applogger.String("addr", client.Addr()), applogger.String("channel", r.Channel))
		return internalrepo.NewRedisEventPublisher(client, r.Channel), nil
	default:
		return internalrepo.NoopPublisher{}, nil
	}
}

// ProvideLifecycle creates the signal state machine.
func ProvideLifecycle(history *usecase.SignalHistory, pub repository.EventPublisher, m repository.Metrics, l *applogger.Logger) *usecase.SignalLifecycle {
	return usecase.NewSignalLifecycle(history,
		usecase.WithLifecyclePublisher(pub),
		usecase.WithLifecycleMetrics(m),
		usecase.WithLifecycleLogger(l.With(applogger.String("component", "lifecycle"))),
	)
}

// ProvideOrchestrator creates the analysis orchestrator.
func ProvideOrchestrator(
	assets *catalog.Catalog,
	scorer service.ConfidenceScorer,
	history *usecase.SignalHistory,
	policy repository.TimeframePolicy,
	clock usecase.Clock,
	pub repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.AnalysisOrchestrator {
	return usecase.NewAnalysisOrchestrator(assets, scorer, history, policy,
		usecase.WithClock(clock),
		usecase.WithPublisher(pub),
		usecase.WithMetrics(m),
		usecase.WithLogger(l.With(applogger.String("component", "orchestrator"))),
	)
}

// ProvideTickDriver creates the periodic lifecycle driver.
func ProvideTickDriver(lc *usecase.SignalLifecycle, cfg *config.Config, clock usecase.Clock, l *applogger.Logger) *usecase.TickDriver {
	return usecase.NewTickDriver(lc, cfg.Engine.TickInterval, clock, l.With(applogger.String("component", "ticker")))
}

// ProvideSettlementCollector creates the settlement feed collector. It returns nil when the feed is disabled.
func ProvideSettlementCollector(cfg *config.Config, lc *usecase.SignalLifecycle, m repository.Metrics, l *applogger.Logger) *usecase.SettlementCollector {
	if !cfg.Settlement.Enabled {
		return nil
	}
	log := l.With(applogger.String("component", "settlement"))
	feed := settlement.New(cfg.Settlement.WebSocketURL, cfg.Settlement.ReconnectDelay, cfg.Settlement.PingInterval, log)
	return usecase.NewSettlementCollector(feed, lc, m, log)
}

// ProvideRateLimiter creates the analyze endpoint limiter.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.AnalyzeCapacity, cfg.RateLimit.AnalyzeRefillPerSec)
}

// ProvideSignalsHandler creates the HTTP API handler.
func ProvideSignalsHandler(
	l *applogger.Logger,
	assets *catalog.Catalog,
	orch *usecase.AnalysisOrchestrator,
	lc *usecase.SignalLifecycle,
	history *usecase.SignalHistory,
	limiter *ratelimit.Limiter,
	clock usecase.Clock,
) *api.SignalsEchoHandler {
	return api.NewSignalsEchoHandler(l.With(applogger.String("component", "api")), assets, orch, lc, history, limiter, clock)
}

// ProvideHTTPServer creates the Echo server with the API routes registered.
func ProvideHTTPServer(cfg *config.Config, h *api.SignalsEchoHandler, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path, prometheus.DefaultRegisterer, prometheus.DefaultGatherer),
		xhttp.WithLogger(l.With(applogger.String("component", "http"))),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	ticker *usecase.TickDriver,
	collector *usecase.SettlementCollector,
	httpServer *xhttp.Server,
	pub repository.EventPublisher,
) *server.App {
	return server.New(cfg, l, ticker, collector, httpServer, pub)
}
