package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/infrastructure/config"
	"github.com/eslsoft/vocstudy/internal/infrastructure/server"
	"github.com/eslsoft/vocstudy/internal/usecase"
	"github.com/eslsoft/vocstudy/internal/usecase/backup"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Server  *server.Server
	Core    *usecase.Core
	Library *usecase.Library
	Backup  *backup.Service
}
