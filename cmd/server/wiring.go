package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"time"

	"qms/internal/actionplans"
	actionplanshandler "qms/internal/actionplans/handler"
	"qms/internal/audits"
	auditshandler "qms/internal/audits/handler"
	"qms/internal/clients"
	clientshandler "qms/internal/clients/handler"
	"qms/internal/dashboard"
	"qms/internal/documents"
	documentshandler "qms/internal/documents/handler"
	"qms/internal/findings"
	findingshandler "qms/internal/findings/handler"
	jwttoken "qms/internal/jwt_token"
	"qms/internal/objectives"
	objectiveshandler "qms/internal/objectives/handler"
	"qms/internal/platform/config"
	"qms/internal/platform/events"
	"qms/internal/platform/metrics"
	"qms/internal/platform/middleware"
	"qms/internal/platform/postgres"
	qmsredis "qms/internal/platform/redis"
	"qms/internal/processes"
	processeshandler "qms/internal/processes/handler"
	"qms/internal/risks"
	riskshandler "qms/internal/risks/handler"
	"qms/internal/shared"
	"qms/internal/stakeholders"
	stakeholdershandler "qms/internal/stakeholders/handler"
	"qms/internal/storage"
	"qms/internal/suppliers"
	suppliershandler "qms/internal/suppliers/handler"
	httptransport "qms/internal/transport/http"
)

const (
	eventTopicPartitions  = 3
	eventBreakerThreshold = 5
	eventBreakerCooldown  = 30 * time.Second
)

// infra holds the process-wide connections. Optional backends stay nil
// when not configured.
type infra struct {
	cfg     config.Server
	log     *slog.Logger
	metrics *metrics.Metrics
	emitter *events.Emitter
	db      *sql.DB
	redis   *qmsredis.Client
	kafka   *events.KafkaPublisher
	checks  map[string]httptransport.HealthCheck
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		checks:  make(map[string]httptransport.HealthCheck),
	}

	if cfg.Store == config.StorePostgres {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		in.db = db
		if err := postgres.Migrate(db); err != nil {
			in.Close()
			return nil, err
		}
		in.checks["postgres"] = db.PingContext
	}

	rc, err := qmsredis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		in.checks["redis"] = rc.Health
	}

	var publisher events.Publisher = events.NewLogPublisher(log)
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.kafka = kp
		if err := kp.EnsureTopic(ctx, eventTopicPartitions, 1); err != nil {
			log.Warn("could not ensure event topic", "topic", cfg.Kafka.Topic, "error", err)
		}
		in.checks["kafka"] = kp.Ping
		publisher = events.Fanout{publisher, kp}
	}
	in.emitter = events.NewEmitter(publisher,
		events.WithLogger(log),
		events.WithMetrics(in.metrics),
		events.WithBreaker(events.NewCircuitBreaker(eventBreakerThreshold, eventBreakerCooldown)),
	)

	log.Info("infrastructure ready",
		"store", cfg.Store,
		"cache", in.redis != nil,
		"kafka", in.kafka != nil,
	)
	return in, nil
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.log.Warn("close redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			in.log.Warn("close postgres", "error", err)
		}
	}
}

func (in *infra) options() []shared.Option {
	return []shared.Option{
		shared.WithEvents(in.emitter),
		shared.WithMetrics(in.metrics),
		shared.WithLogger(in.log),
		shared.WithDefaultLimit(in.cfg.SearchDefaultLimit),
	}
}

// collection picks the configured backend for one entity type and puts the
// Redis read-through cache in front of it when enabled.
func collection[T storage.Record](in *infra, name string) storage.Collection[T] {
	var c storage.Collection[T]
	if in.db != nil {
		c = storage.NewPostgres[T](in.db, name)
	} else {
		c = storage.NewMemory[T]()
	}
	if in.redis != nil {
		c = storage.NewCached(c, in.redis.Client, name,
			storage.WithCacheTTL(in.cfg.Redis.CacheTTL),
			storage.WithCacheLogger(in.log),
		)
	}
	return c
}

func validator(cfg config.AuthConfig, log *slog.Logger) middleware.JWTValidator {
	if cfg.JWTSecret == "" {
		log.Warn("AUTH_JWT_SECRET not set, API is unauthenticated")
		return nil
	}
	return jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.JWTSecret, cfg.Issuer))
}

func active() map[string]url.Values {
	return map[string]url.Values{"active": {"status": {"ACTIVE"}}}
}

func modules(in *infra) []httptransport.Registrar {
	opts := in.options()
	docs := documents.NewService(collection[*documents.Document](in, "documents"), opts...)
	finds := findings.NewService(collection[*findings.Finding](in, "findings"), opts...)
	plans := actionplans.NewService(collection[*actionplans.ActionPlan](in, "action_plans"), opts...)
	objs := objectives.NewService(collection[*objectives.Objective](in, "objectives"), opts...)
	sups := suppliers.NewService(collection[*suppliers.Supplier](in, "suppliers"), opts...)
	stks := stakeholders.NewService(collection[*stakeholders.Stakeholder](in, "stakeholders"), opts...)
	auds := audits.NewService(collection[*audits.Audit](in, "audits"), opts...)
	clis := clients.NewService(collection[*clients.Client](in, "clients"), opts...)
	rsks := risks.NewService(collection[*risks.Risk](in, "risks"), opts...)
	procs := processes.NewService(collection[*processes.Process](in, "processes"), opts...)

	summary := dashboard.NewService(
		dashboard.Module{Name: "documents", Count: dashboard.Count(docs.Search), Metrics: map[string]url.Values{
			"approved":     {"status": {string(documents.StatusApproved)}},
			"expired":      {"expired": {"true"}},
			"expiringSoon": {"expiringSoon": {"true"}},
		}},
		dashboard.Module{Name: "findings", Count: dashboard.Count(finds.Search), Metrics: map[string]url.Values{
			"open":           {"status": {string(findings.StatusOpen)}},
			"overdueActions": {"overdueActions": {"true"}},
		}},
		dashboard.Module{Name: "actionPlans", Count: dashboard.Count(plans.Search), Metrics: map[string]url.Values{
			"overdue": {"status": {string(actionplans.StatusOverdue)}},
		}},
		dashboard.Module{Name: "objectives", Count: dashboard.Count(objs.Search), Metrics: map[string]url.Values{
			"overdue": {"overdue": {"true"}},
		}},
		dashboard.Module{Name: "suppliers", Count: dashboard.Count(sups.Search), Metrics: map[string]url.Values{
			"evaluationOverdue": {"evaluationOverdue": {"true"}},
		}},
		dashboard.Module{Name: "audits", Count: dashboard.Count(auds.Search), Metrics: map[string]url.Values{
			"overdue": {"overdue": {"true"}},
		}},
		dashboard.Module{Name: "risks", Count: dashboard.Count(rsks.Search), Metrics: map[string]url.Values{
			"critical":        {"rating": {string(risks.RatingCritical)}},
			"overdueControls": {"overdueControls": {"true"}},
		}},
		dashboard.Module{Name: "stakeholders", Count: dashboard.Count(stks.Search), Metrics: active()},
		dashboard.Module{Name: "clients", Count: dashboard.Count(clis.Search), Metrics: active()},
		dashboard.Module{Name: "processes", Count: dashboard.Count(procs.Search), Metrics: active()},
	)

	return []httptransport.Registrar{
		documentshandler.New(docs, in.log),
		findingshandler.New(finds, in.log),
		actionplanshandler.New(plans, in.log),
		objectiveshandler.New(objs, in.log),
		suppliershandler.New(sups, in.log),
		stakeholdershandler.New(stks, in.log),
		auditshandler.New(auds, in.log),
		clientshandler.New(clis, in.log),
		riskshandler.New(rsks, in.log),
		processeshandler.New(procs, in.log),
		dashboard.NewHandler(summary, in.log),
	}
}
