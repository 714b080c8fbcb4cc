package app

import (
	"context"
	"fmt"

	"salonmenu/internal/cache"
	"salonmenu/internal/config"
	"salonmenu/internal/db"
	"salonmenu/internal/events"
	"salonmenu/internal/handlers"
	"salonmenu/internal/logger"
	"salonmenu/internal/middleware"
	"salonmenu/internal/repository"
	"salonmenu/internal/routes"
	"salonmenu/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// App — собранный сервер и то, что нужно закрыть при остановке.
type App struct {
	Router  *mux.Router
	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	// Хранилище
	var (
		menuStore  services.MenuStore
		ownerStore services.OwnerRepo
	)
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Log.Warn("STORAGE=memory: данные не переживут перезапуск")
		mem := repository.NewMemoryStore()
		menuStore, ownerStore = mem, mem
	default:
		conn, err := db.NewPostgresConnection(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		if err := repository.ApplyMigrations(ctx, conn); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		menuStore = repository.NewMenuRepository(conn)
		ownerStore = repository.NewOwnerRepository(conn)
	}

	// Кэш и события
	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDBIndex())
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		logger.Log.Info("Кэш меню включён", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL()))
	}
	menuCache := cache.NewMenuCache(redisClient, cfg.CacheTTL())
	publisher := events.NewPublisher(cfg.AMQPURL)

	// Сервисы
	menuSvc := services.NewMenuService(menuStore, menuCache, publisher)
	ownerSvc := services.NewOwnerService(ownerStore, cfg.JWTSecret, cfg.TokenTTL())

	// Хендлеры
	h := routes.Handlers{
		Menu:   handlers.NewMenuHandler(menuSvc),
		Owner:  handlers.NewOwnerHandler(ownerSvc),
		Health: handlers.NewHealthHandler(menuSvc),
	}

	// Маршруты
	a.Router = mux.NewRouter()
	routes.InitRoutes(a.Router, h, middleware.OwnerScope(cfg.JWTSecret, menuSvc))
	return a, nil
}
