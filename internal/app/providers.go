package app

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/adapter/httpapi"
	kvrepo "github.com/eslsoft/vocstudy/internal/adapter/repository"
	"github.com/eslsoft/vocstudy/internal/infrastructure/config"
	"github.com/eslsoft/vocstudy/internal/infrastructure/server"
	"github.com/eslsoft/vocstudy/internal/repository"
	"github.com/eslsoft/vocstudy/internal/usecase"
	"github.com/eslsoft/vocstudy/internal/usecase/backup"
)

func provideCatalogSource(cfg *config.Config, logger logrus.FieldLogger) repository.CatalogSource {
	return kvrepo.NewFileCatalogSource(os.DirFS(cfg.Catalog.Dir), cfg.Catalog.Index, logger)
}

func provideCatalog(src repository.CatalogSource, logger logrus.FieldLogger) *usecase.Catalog {
	return usecase.LoadCatalog(context.Background(), src, logger)
}

func provideMasteryService(repo repository.MasteryRepository, catalog *usecase.Catalog, logger logrus.FieldLogger) *usecase.MasteryService {
	return usecase.NewMasteryService(context.Background(), repo, catalog, logger)
}

func provideShuffler(cfg *config.Config) *usecase.Shuffler {
	return usecase.NewShuffler(cfg.Study.Seed)
}

func provideSelectorConfig(cfg *config.Config) usecase.SelectorConfig {
	return usecase.SelectorConfig{
		OverlapRatio: cfg.Study.Selection.OverlapRatio,
		HistoryLimit: cfg.Study.Selection.HistoryLimit,
	}
}

func provideStudyOptions(cfg *config.Config) usecase.StudyOptions {
	opts := usecase.DefaultStudyOptions()
	opts.FeedbackDelay = cfg.Study.FeedbackDelay
	opts.MatchEvalDelay = cfg.Study.MatchEvalDelay
	opts.MatchResetDelay = cfg.Study.MatchResetDelay
	opts.BatchPairs = cfg.Study.MatchBatchPairs
	opts.DefaultCount = cfg.Study.DefaultCount
	return opts
}

// provideCore stops the session timers on cleanup.
func provideCore(
	catalog *usecase.Catalog,
	mastery *usecase.MasteryService,
	selector *usecase.WordSelector,
	library *usecase.Library,
	snapshots repository.SnapshotRepository,
	shuffler *usecase.Shuffler,
	scheduler usecase.Scheduler,
	opts usecase.StudyOptions,
	logger logrus.FieldLogger,
) (*usecase.Core, func()) {
	core := usecase.NewCore(catalog, mastery, selector, library, snapshots, shuffler, scheduler, opts, logger)
	return core, core.Close
}

func provideAPIHandler(h *httpapi.Handler) server.APIHandler {
	return h.Routes()
}

func provideBackupService(store repository.KeyValueStore, logger logrus.FieldLogger) (*backup.Service, error) {
	return backup.NewService(store, backup.WithLogger(logger))
}
