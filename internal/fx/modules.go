package fx

import (
	"arena-tracker/internal/config"
	"arena-tracker/internal/database"
	"arena-tracker/internal/logger"
	"arena-tracker/internal/repository"
	"arena-tracker/internal/scrape"
	"arena-tracker/internal/server"
	"arena-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvideRowSource(client *scrape.Client) service.RowSource {
	return client
}

func ProvideTeamStore(repo *repository.TeamRepository) service.TeamStore {
	return repo
}

func ProvideGameStore(repo *repository.GameRepository) service.GameStore {
	return repo
}

func ProvideSnapshotStore(repo *repository.SnapshotRepository) service.SnapshotStore {
	return repo
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewTeamRepository),
	fx.Provide(repository.NewGameRepository),
	fx.Provide(repository.NewSnapshotRepository),
	fx.Provide(ProvideTeamStore),
	fx.Provide(ProvideGameStore),
	fx.Provide(ProvideSnapshotStore),
	// scrape client
	fx.Provide(scrape.NewClient),
	fx.Provide(ProvideRowSource),
	// svc
	fx.Provide(service.NewTeamService),
	fx.Provide(service.NewReconstructionService),
	fx.Provide(service.NewCapacityService),
	fx.Provide(service.NewSnapshotService),
	// server
	fx.Provide(server.New),
)
