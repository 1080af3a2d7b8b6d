//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/adapter/httpapi"
	kvrepo "github.com/eslsoft/vocstudy/internal/adapter/repository"
	"github.com/eslsoft/vocstudy/internal/infrastructure/config"
	"github.com/eslsoft/vocstudy/internal/infrastructure/database"
	"github.com/eslsoft/vocstudy/internal/infrastructure/server"
	"github.com/eslsoft/vocstudy/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewKeyValueStore,
)

var repositorySet = wire.NewSet(
	kvrepo.NewMasteryRepository,
	kvrepo.NewSnapshotRepository,
	provideCatalogSource,
)

var usecaseSet = wire.NewSet(
	provideCatalog,
	provideMasteryService,
	provideShuffler,
	provideSelectorConfig,
	provideStudyOptions,
	usecase.NewWordSelector,
	usecase.NewLibrary,
	usecase.NewTimerScheduler,
	provideCore,
	provideBackupService,
	wire.Bind(new(usecase.SessionController), new(*usecase.Core)),
)

var serviceSet = wire.NewSet(
	httpapi.NewHandler,
	provideAPIHandler,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "Config", "Logger", "Server", "Core", "Library", "Backup"),
	)
	return nil, nil, nil
}
