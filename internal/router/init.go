package router

import (
	userapp "github.com/playtube/playtube-api/internal/application"
	"github.com/playtube/playtube-api/internal/container"
	repouser "github.com/playtube/playtube-api/internal/domain/repository"
	"github.com/playtube/playtube-api/internal/infrastructure/gcsmedia"
	pginfra "github.com/playtube/playtube-api/internal/infrastructure/postgres"
	handlers "github.com/playtube/playtube-api/internal/interface/http"
	"github.com/playtube/playtube-api/internal/router/modules"
)

type UserModuleDeps struct {
	Repo    repouser.UserRepository
	Service *userapp.Service
	Handler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	repo := pginfra.NewUserRepository(container.GetPGPool())
	media := gcsmedia.New(container.GetGCS(), cfg.GCSBucket)

	service := userapp.NewService(
		repo,
		container.GetJWT(),
		media,
		container.GetRedis(),
		container.GetLogger(),
		cfg.ProfileCacheTTL,
	)

	handler := handlers.NewUserHandler(
		service,
		container.GetLogger(),
		cfg.CookieDomain,
		cfg.CookieSecure,
	)

	return UserModuleDeps{Repo: repo, Service: service, Handler: handler}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	userDeps := buildUserDeps()
	r.Add(modules.NewUserModule(userDeps.Handler, container.GetJWT()))
}
