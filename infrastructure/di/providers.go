package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"tabula-backend/application/commands"
	"tabula-backend/application/commands/bus"
	commandhandlers "tabula-backend/application/commands/handlers"
	"tabula-backend/application/ports"
	"tabula-backend/application/queries"
	querybus "tabula-backend/application/queries/bus"
	queryhandlers "tabula-backend/application/queries/handlers"
	domainconfig "tabula-backend/domain/config"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/infrastructure/config"
	"tabula-backend/infrastructure/messaging/eventbridge"
	"tabula-backend/infrastructure/persistence/dynamodb"
	"tabula-backend/pkg/auth"
	"tabula-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideNodeTypeRegistry creates the registry of built-in node types
func ProvideNodeTypeRegistry() *nodetypes.Registry {
	return nodetypes.Builtin()
}

// ProvideDomainConfig loads the business rules for the current environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideTracer creates an X-Ray tracer when tracing is enabled
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("tabula-backend")
}

// ProvideMetrics creates the CloudWatch metrics recorder
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewMetrics("Tabula", nil)
	}
	return observability.NewMetrics("Tabula", client)
}

// ProvideBoardRepository creates the DynamoDB board repository
func ProvideBoardRepository(
	client *awsdynamodb.Client,
	cfg *config.Config,
	registry *nodetypes.Registry,
	tracer *observability.Tracer,
	logger *zap.Logger,
) ports.BoardRepository {
	return dynamodb.NewBoardRepository(client, cfg.DynamoDBTable, registry, tracer, logger)
}

// ProvideGuideMarkerRepository creates the DynamoDB guide marker repository
func ProvideGuideMarkerRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.GuideMarkerRepository {
	return dynamodb.NewGuideMarkerRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideJWTValidator creates the bearer-token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideCommandBus creates the command bus with all handlers registered
func ProvideCommandBus(
	boardRepo ports.BoardRepository,
	guideRepo ports.GuideMarkerRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	registry *nodetypes.Registry,
	limits *domainconfig.DomainConfig,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateBoardCommand{}, commandhandlers.NewCreateBoardHandler(boardRepo, publisher, metrics, registry, limits, logger)},
		{commands.UpdateBoardCommand{}, commandhandlers.NewUpdateBoardHandler(boardRepo, publisher, metrics, registry, logger)},
		{commands.DeleteBoardCommand{}, commandhandlers.NewDeleteBoardHandler(boardRepo, publisher, metrics, logger)},
		{commands.MarkGuideShownCommand{}, commandhandlers.NewMarkGuideShownHandler(guideRepo, logger)},
	}
	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, reg.handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates the query bus with all handlers registered
func ProvideQueryBus(
	boardRepo ports.BoardRepository,
	guideRepo ports.GuideMarkerRepository,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.ListBoardsQuery{}, queryhandlers.NewListBoardsHandler(boardRepo, logger)},
		{queries.GetBoardQuery{}, queryhandlers.NewGetBoardHandler(boardRepo, logger)},
		{queries.GetGuideStatusQuery{}, queryhandlers.NewGetGuideStatusHandler(guideRepo, logger)},
	}
	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}
