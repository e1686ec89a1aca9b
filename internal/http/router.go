package http

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/http/handlers"
	"github.com/geocoder89/accounthub/internal/http/middlewares"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // plenty for user payloads

// Store is everything the HTTP layer needs from a user repository;
// satisfied by both the postgres and the memory implementation.
type Store interface {
	handlers.UsersStore
	GetByUsername(ctx context.Context, username string) (user.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Deps carries the wired collaborators into the router. Tests swap in the
// memory repo; cmd/api wires postgres.
type Deps struct {
	Cfg      config.Config
	Users    Store
	JWT      *auth.Manager
	Ping     func() error
	Prom     *observability.Prom
	Registry *prometheus.Registry
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	cfgEnv := os.Getenv("APP_ENV")

	if cfgEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("accounthub"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health

	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// wire up the auth flow and handlers

	authenticator := auth.NewAuthenticator(deps.Users, log)
	authMW := middlewares.NewAuthMiddleware(deps.JWT, deps.Users)

	usersHandler := handlers.NewUsersHandler(deps.Users)
	loginHandler := handlers.NewLoginHandler(authenticator, deps.JWT, deps.Users, loginObserver(deps.Prom), log)

	api := r.Group("/api/auth")

	users := api.Group("/users", middlewares.RequireJSON())
	users.POST("/register", usersHandler.Register)
	users.POST("/create", authMW.RequireUser(), middlewares.RequireSuperuser(), usersHandler.CreateUser)
	users.GET("/", authMW.RequireUser(), middlewares.RequireSuperuser(), usersHandler.ListUsers)
	users.GET("/get/me", authMW.RequireUser(), middlewares.RequireActive(), usersHandler.GetMe)
	users.PUT("/update/me", authMW.RequireUser(), middlewares.RequireActive(), usersHandler.UpdateMe)
	users.GET("/get/:id", authMW.RequireUser(), middlewares.RequireActive(), usersHandler.GetUserByID)
	users.PUT("/update/:id", authMW.RequireUser(), middlewares.RequireSuperuser(), usersHandler.UpdateUserByID)
	users.DELETE("/delete/:id", authMW.RequireUser(), middlewares.RequireSuperuser(), usersHandler.DeleteUserByID)

	api.POST("/login/access-token", loginHandler.AccessToken)

	return r
}

func loginObserver(p *observability.Prom) handlers.LoginObserver {
	if p == nil {
		return nil
	}
	return p
}

// DefaultPing returns a readiness probe over a pgx pool-style pinger.
func DefaultPing(ping func(ctx context.Context) error) func() error {
	return func() error {
		if ping == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return ping(ctx)
	}
}
