// cmd/edpsych-server/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"edpsych-connect/internal/api"
	"edpsych-connect/internal/assessment"
	"edpsych-connect/internal/common/auth"
	"edpsych-connect/internal/common/aws"
	"edpsych-connect/internal/common/camunda"
	"edpsych-connect/internal/common/config"
	"edpsych-connect/internal/common/database"
	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/common/observability"
	"edpsych-connect/internal/common/zoho"
	"edpsych-connect/internal/contact"
	"edpsych-connect/internal/content"
	"edpsych-connect/internal/mcptools"
	"edpsych-connect/internal/notify"
	"edpsych-connect/internal/records"
	"edpsych-connect/internal/search"

	scoreassessment "edpsych-connect/internal/workers/assessment/score-assessment"
	approvedraft "edpsych-connect/internal/workers/content/approve-draft"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func(context.Context) error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(ctx); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting edpsych-connect server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		zapLog.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	zapLog.Info("Server stopped gracefully")
}

// app collects the wired collaborators and their shutdown hooks.
type app struct {
	cfg         *config.Config
	log         logger.Logger
	deps        api.Dependencies
	contentOpts []content.ServiceOption
	recorder    assessment.ResultRecorder
	closers     []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) ready(name string, check func(context.Context) error) {
	a.deps.Readiness = append(a.deps.Readiness, api.ReadinessCheck{Name: name, Check: check})
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown(context.Background())

	a := &app{cfg: cfg, log: log, deps: api.Dependencies{Observability: obs}}
	defer a.close()

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	if err := a.connectPostgres(ctx); err != nil {
		return err
	}
	if err := a.connectRedis(ctx); err != nil {
		return err
	}
	if err := a.connectElasticsearch(ctx); err != nil {
		return err
	}
	if err := a.connectNotifications(ctx); err != nil {
		return err
	}
	contactSvc, err := a.newContactService(ctx)
	if err != nil {
		return err
	}

	if cfg.Auth.KeycloakEnabled() {
		a.deps.Auth = auth.NewKeycloakClient(
			cfg.Auth.Keycloak.URL,
			cfg.Auth.Keycloak.Realm,
			cfg.Auth.Keycloak.ClientID,
			cfg.Auth.Keycloak.ClientSecret,
		)
		log.Info("Keycloak identity provider configured", map[string]interface{}{"realm": cfg.Auth.Keycloak.Realm})
	}

	assessments := assessment.NewService(engine, a.recorder, log)
	store := content.NewStore(cfg.Content.DraftsDir, cfg.Content.ApprovedDir, log)
	contentSvc := content.NewService(store, log, a.contentOpts...)

	a.deps.Assessments = assessments
	a.deps.Content = contentSvc
	a.deps.Contact = contactSvc

	if cfg.MCP.Enabled {
		mcpServer := mcptools.NewServer(mcptools.NewTools(assessments, log), cfg.App.Version)
		a.deps.MCP = server.NewStreamableHTTPServer(mcpServer, server.WithEndpointPath(cfg.MCP.Path))
		log.Info("MCP endpoint enabled", map[string]interface{}{"path": cfg.MCP.Path})
	}

	workers, err := a.startWorkers(ctx, assessments, contentSvc)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	httpServer := api.NewServer(cfg, a.deps, log).HTTPServer()
	g.Go(func() error {
		log.Info("HTTP server listening", map[string]interface{}{"addr": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received, stopping...", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		if workers != nil {
			workers.Close()
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.Content.Watch {
		watcher := content.NewWatcher(contentSvc, log)
		g.Go(func() error { return watcher.Run(gctx) })
	}

	return g.Wait()
}

func newEngine(cfg *config.Config) (*assessment.Engine, error) {
	catalogs := assessment.DefaultCatalogs()
	if cfg.Assessment.CatalogPath != "" {
		loaded, err := assessment.LoadCatalogs(cfg.Assessment.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalogs = loaded
	}
	return assessment.NewEngine(catalogs, assessment.WithPartialSubmissions(cfg.Assessment.AllowPartial))
}

func (a *app) connectPostgres(ctx context.Context) error {
	if !a.cfg.Database.Postgres.Enabled() {
		a.log.Info("PostgreSQL not configured, assessment records disabled", nil)
		return nil
	}

	var pg *database.PostgresClient
	err := retryWithBackoff(ctx, func(ctx context.Context) error {
		if pg == nil {
			var err error
			if pg, err = database.NewPostgres(a.cfg.Database.Postgres); err != nil {
				return err
			}
		}
		return pg.Ping(ctx)
	}, 10, 2*time.Second, a.log, "PostgreSQL connection")
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() { _ = pg.Close() })
	a.ready("postgres", pg.Ping)
	a.log.Info("PostgreSQL connected successfully", nil)

	store := records.NewStore(pg.DB, a.log)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	a.deps.Records = store
	a.contentOpts = append(a.contentOpts, content.WithAuditRecorder(store))
	if a.cfg.Assessment.Persist {
		a.recorder = store
	}
	return nil
}

func (a *app) connectRedis(ctx context.Context) error {
	if !a.cfg.Database.Redis.Enabled() {
		a.log.Info("Redis not configured, post listing cache disabled", nil)
		return nil
	}

	rc := database.NewRedis(a.cfg.Database.Redis)
	if err := retryWithBackoff(ctx, rc.Ping, 10, 2*time.Second, a.log, "Redis connection"); err != nil {
		_ = rc.Close()
		return err
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })
	a.ready("redis", rc.Ping)
	a.log.Info("Redis connected successfully", nil)

	ttl := time.Duration(a.cfg.Cache.PostsTTL) * time.Second
	a.contentOpts = append(a.contentOpts, content.WithCache(content.NewRedisCache(rc.Client, a.cfg.Cache.KeyPrefix, ttl)))
	return nil
}

func (a *app) connectElasticsearch(ctx context.Context) error {
	if !a.cfg.Database.Elasticsearch.Enabled() {
		a.log.Info("Elasticsearch not configured, blog search scans approved posts", nil)
		return nil
	}

	es, err := database.NewElasticsearch(a.cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}
	if err := retryWithBackoff(ctx, es.Ping, 10, 2*time.Second, a.log, "Elasticsearch connection"); err != nil {
		return err
	}
	a.ready("elasticsearch", es.Ping)
	a.log.Info("Elasticsearch connected successfully", nil)

	index := search.NewIndex(es.Client, a.cfg.Database.Elasticsearch.Index, a.log)
	if err := index.EnsureIndex(ctx); err != nil {
		return err
	}
	a.contentOpts = append(a.contentOpts, content.WithIndexer(index))
	return nil
}

func (a *app) connectNotifications(ctx context.Context) error {
	sns := a.cfg.Integrations.AWS.SNS
	if !sns.Enabled {
		return nil
	}
	client, err := aws.NewSNSClient(ctx, a.cfg.Integrations.AWS.Region, sns.TopicARN)
	if err != nil {
		return err
	}
	a.contentOpts = append(a.contentOpts, content.WithNotifier(notify.NewApprovalNotifier(client, a.log)))
	a.log.Info("SNS approval notifications enabled", map[string]interface{}{"topicArn": sns.TopicARN})
	return nil
}

func (a *app) newContactService(ctx context.Context) (*contact.Service, error) {
	var opts []contact.Option

	ses := a.cfg.Integrations.AWS.SES
	if ses.Enabled {
		mailer, err := aws.NewSESClient(ctx, a.cfg.Integrations.AWS.Region, ses.FromEmail)
		if err != nil {
			return nil, err
		}
		opts = append(opts, contact.WithMailer(mailer, ses.ToEmail))
	} else {
		a.log.Warn("SES not enabled, contact messages are only logged", nil)
	}

	if z := a.cfg.Integrations.Zoho; z.AuthToken != "" {
		baseURL := z.BaseURL
		if baseURL == "" {
			baseURL = zoho.DefaultBaseURL
		}
		opts = append(opts, contact.WithCRM(zoho.NewCRMClient(baseURL, z.AuthToken)))
	}

	return contact.NewService(a.log, opts...), nil
}

// startWorkers connects to Zeebe and opens the job workers. It returns nil
// when no broker is configured.
func (a *app) startWorkers(ctx context.Context, assessments *assessment.Service, contentSvc *content.Service) (*camunda.Workers, error) {
	if a.cfg.Camunda.BrokerAddress == "" {
		a.log.Info("Zeebe broker not configured, job workers disabled", nil)
		return nil, nil
	}

	var client zbc.Client
	err := retryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		client, err = camunda.Connect(ctx, a.cfg.Camunda)
		return err
	}, 10, 2*time.Second, a.log, "Zeebe client initialization")
	if err != nil {
		return nil, err
	}
	a.log.Info("Zeebe client connected successfully", nil)
	a.ready("zeebe", func(ctx context.Context) error {
		return camunda.HealthCheck(ctx, client, 2*time.Second)
	})

	workers := camunda.NewWorkers(client, a.log)

	scoreCfg := config.GetWorkerConfig(a.cfg, scoreassessment.TaskType)
	scorer := scoreassessment.NewHandler(&scoreassessment.Config{
		Timeout: config.GetDuration(scoreCfg.Timeout),
	}, assessments, a.log)
	workers.Start(scoreassessment.TaskType, scoreCfg, scorer.Handle)

	approveCfg := config.GetWorkerConfig(a.cfg, approvedraft.TaskType)
	approver := approvedraft.NewHandler(&approvedraft.Config{
		Timeout:      config.GetDuration(approveCfg.Timeout),
		DefaultActor: "workflow",
	}, contentSvc, a.log)
	workers.Start(approvedraft.TaskType, approveCfg, approver.Handle)

	return workers, nil
}
