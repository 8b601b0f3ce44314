//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"tabula-backend/application/commands/bus"
	"tabula-backend/application/ports"
	querybus "tabula-backend/application/queries/bus"
	domainconfig "tabula-backend/domain/config"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/infrastructure/config"
	"tabula-backend/pkg/auth"
	"tabula-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	Registry     *nodetypes.Registry
	BoardRepo    ports.BoardRepository
	GuideRepo    ports.GuideMarkerRepository
	Publisher    ports.EventPublisher
	Metrics      *observability.Metrics
	Tracer       *observability.Tracer
	JWTValidator *auth.JWTValidator
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideNodeTypeRegistry,
	ProvideDomainConfig,
	ProvideTracer,
	ProvideMetrics,
	ProvideBoardRepository,
	ProvideGuideMarkerRepository,
	ProvideEventPublisher,
	ProvideJWTValidator,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
