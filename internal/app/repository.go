package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/database"
	"github.com/tigerroll/surfin-energy/pkg/batch/component/migration"
	coreConfig "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
	repository "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/repository"
	"github.com/tigerroll/surfin-energy/pkg/batch/infrastructure/repository/inmemory"
	sqlrepo "github.com/tigerroll/surfin-energy/pkg/batch/infrastructure/repository/sql"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// RepositoryParams defines the dependencies for NewJobRepository.
type RepositoryParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *coreConfig.Config
	Resolver  database.DBConnectionResolver
	AppCtx    context.Context `name:"appCtx"`
}

// NewJobRepository returns the repository selected by
// surfin.infrastructure.job_repository. The "sql" type migrates the schema
// of the referenced database before first use.
func NewJobRepository(p RepositoryParams) (repository.JobRepository, error) {
	rc := p.Config.Surfin.Infrastructure.JobRepository

	var repo repository.JobRepository
	switch rc.Type {
	case "", "inmemory":
		repo = inmemory.NewInMemoryJobRepository()
	case "sql":
		conn, err := p.Resolver.ResolveDBConnection(p.AppCtx, rc.DBRef)
		if err != nil {
			return nil, fmt.Errorf("job repository database '%s': %w", rc.DBRef, err)
		}
		path := sqlrepo.MigrationPath(conn.Type())
		if err := migration.NewMigrator(conn).Up(p.AppCtx, sqlrepo.Migrations, path, rc.MigrationTable); err != nil {
			return nil, err
		}
		repo = sqlrepo.NewSQLJobRepository(conn.GormDB())
	default:
		return nil, fmt.Errorf("unknown job repository type %q (want \"inmemory\" or \"sql\")", rc.Type)
	}
	logger.Debugf("Job repository: %T", repo)

	p.Lifecycle.Append(fx.StopHook(repo.Close))
	return repo, nil
}

// RepositoryModule provides repository.JobRepository.
var RepositoryModule = fx.Options(
	fx.Provide(NewJobRepository),
)
