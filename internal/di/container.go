// Package di assembles the application object graph. Construction is
// explicit and ordered; there is no codegen behind it.
package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"skillmap-backend/application/commands"
	"skillmap-backend/application/ports"
	"skillmap-backend/application/queries"
	"skillmap-backend/domain/services"
	"skillmap-backend/infrastructure/config"
	"skillmap-backend/infrastructure/messaging/eventbridge"
	dynamostore "skillmap-backend/infrastructure/persistence/dynamodb"
	"skillmap-backend/infrastructure/persistence/memory"
	"skillmap-backend/interfaces/http/rest/handlers"
	v1 "skillmap-backend/interfaces/http/rest/v1"
	"skillmap-backend/pkg/observability"
)

// Container holds the assembled application.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Registry   *prometheus.Registry
	Calculator *services.SimilarityCalculator
	Analyzer   *services.PathAnalyzer
	Router     chi.Router

	watcher *config.OverridesWatcher
}

// NewContainer builds the full application from configuration. Production
// environments get DynamoDB-backed statistics and journey persistence plus
// EventBridge publishing; development runs fully in memory.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg.GraphFixturePath == "" {
		return nil, fmt.Errorf("GRAPH_FIXTURE_PATH is required")
	}

	graphRepo := memory.NewGraphRepository(cfg.GraphFixturePath, logger)
	nodes, connections, err := graphRepo.LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load content graph: %w", err)
	}

	var (
		source services.PathStatisticsSource
		store  ports.JourneyStore
		bus    ports.EventBus
	)

	if cfg.IsProduction() || cfg.IsLambda {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS config: %w", err)
		}

		dbClient := awsdynamodb.NewFromConfig(awsCfg)
		statsSource := dynamostore.NewStatisticsSource(dbClient, cfg.JourneyTable, logger)
		if err := statsSource.Load(ctx); err != nil {
			return nil, err
		}
		source = statsSource
		store = dynamostore.NewJourneyStore(dbClient, cfg.JourneyTable, logger)
		bus = eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
	} else {
		source = memory.NewSeedStatisticsSource(nil, nil)
		store = memory.NewJourneyStore()
	}

	calculator := services.NewSimilarityCalculator(nodes, connections, cfg.Similarity, logger)
	analyzer := services.NewPathAnalyzer(nodes, connections, calculator, cfg.Path, source, logger)

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.EnableMetrics {
		metrics = observability.NewMetrics(registry)
	}

	similarityQueries := queries.NewSimilarityQueryHandler(calculator, metrics, logger)
	pathQueries := queries.NewPathQueryHandler(analyzer, metrics, logger)
	journeyHandler := commands.NewRecordJourneyEventHandler(analyzer, store, bus, metrics, logger)

	routerCfg := v1.RouterConfig{EnableCORS: cfg.EnableCORS}
	if cfg.EnableMetrics {
		routerCfg.Registry = registry
	}
	router := v1.NewRouter(
		handlers.NewSimilarityHandler(similarityQueries, logger),
		handlers.NewPathHandler(pathQueries, journeyHandler, logger),
		routerCfg,
	)

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Registry:   registry,
		Calculator: calculator,
		Analyzer:   analyzer,
		Router:     router,
	}

	if cfg.OverridesPath != "" {
		watcher, err := config.NewOverridesWatcher(cfg.OverridesPath, logger)
		if err != nil {
			return nil, err
		}
		watcher.OnChange(func(o *config.Overrides) {
			calculator.UpdateWeights(o.Similarity)
			logger.Info("similarity weights updated from overrides")
		})
		watcher.Start()
		c.watcher = watcher
	}

	return c, nil
}

// Close releases container resources.
func (c *Container) Close() {
	if c.watcher != nil {
		c.watcher.Stop()
	}
}
