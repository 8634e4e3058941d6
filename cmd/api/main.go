package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/sabanapos/pedidos-api/docs"
	"github.com/sabanapos/pedidos-api/internal/application/analytics"
	"github.com/sabanapos/pedidos-api/internal/application/auth"
	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/application/ordering"
	"github.com/sabanapos/pedidos-api/internal/application/usecase"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
	infrakafka "github.com/sabanapos/pedidos-api/internal/infrastructure/kafka"
	"github.com/sabanapos/pedidos-api/internal/infrastructure/memory"
	infrapdf "github.com/sabanapos/pedidos-api/internal/infrastructure/pdf"
	"github.com/sabanapos/pedidos-api/internal/infrastructure/postgres"
	infraredis "github.com/sabanapos/pedidos-api/internal/infrastructure/redis"
	httpRouter "github.com/sabanapos/pedidos-api/internal/interfaces/http"
	"github.com/sabanapos/pedidos-api/pkg/config"
	"github.com/sabanapos/pedidos-api/pkg/logger"
	"github.com/sabanapos/pedidos-api/pkg/retry"
)

// devJWTSecret solo se usa fuera de production cuando JWT_SECRET no está definido.
const devJWTSecret = "dev-only-secret"

// storage repositorios del adaptador elegido por STORAGE_DRIVER.
type storage struct {
	users         repository.UserRepository
	locations     repository.LocationRepository
	products      repository.ProductRepository
	orders        repository.OrderRepository
	notifications repository.NotificationRepository
	favorites     repository.FavoriteRepository
	cards         repository.CardRepository
	txRunner      inventory.TxRunner
}

func postgresStorage(pool *pgxpool.Pool) storage {
	return storage{
		users:         postgres.NewUserRepository(pool),
		locations:     postgres.NewLocationRepository(pool),
		products:      postgres.NewProductRepository(pool),
		orders:        postgres.NewOrderRepository(pool),
		notifications: postgres.NewNotificationRepository(pool),
		favorites:     postgres.NewFavoriteRepository(pool),
		cards:         postgres.NewCardRepository(pool),
		txRunner:      postgres.NewTxRunner(pool),
	}
}

func memoryStorage() storage {
	r := memory.NewRepos(memory.NewStore())
	return storage{
		users:         r.Users,
		locations:     r.Locations,
		products:      r.Products,
		orders:        r.Orders,
		notifications: r.Notifications,
		favorites:     r.Favorites,
		cards:         r.Cards,
		txRunner:      r.TxRunner,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío, se usa el secreto de desarrollo")
		cfg.JWT.Secret = devJWTSecret
	}

	ctx := context.Background()

	var store storage
	switch cfg.Storage.Driver {
	case "memory":
		store = memoryStorage()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		store = postgresStorage(pool)
	}

	// Canal en vivo y sesiones: Redis si está configurado, si no en memoria (una sola réplica).
	var (
		hub      notification.LiveHub = memory.NewHub()
		sessions usecase.SessionStore = memory.NewSessionStore()
	)
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		hub = infraredis.NewHub(rdb, log.Component("redis-hub"))
		sessions = infraredis.NewSessionStore(rdb)
	}

	var publisher notification.EventPublisher
	if cfg.Kafka.Enabled() {
		kp := infrakafka.NewPublisher(cfg.Kafka, log.Component("kafka"))
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicando eventos de dominio")
	}

	resolver := role.NewResolver(cfg.Roles.ClientDomain, cfg.Roles.OperatorDomain)

	dispatcher := notification.NewDispatcher(store.notifications, store.locations, hub, publisher, log.Component("notifications"))
	ledger := inventory.NewLedger(store.txRunner, store.products, dispatcher, inventory.Config{
		LowStockThreshold: cfg.Ledger.LowStockThreshold,
		Retry:             retry.Policy{Timeout: cfg.Ledger.StorageTimeout, Backoff: cfg.Ledger.RetryBackoff},
	}, log.Component("ledger"))

	orderSvc := ordering.NewService(
		store.orders, store.products, store.locations, store.users,
		ledger, dispatcher, infrapdf.NewReceiptGenerator(nil), log.Component("orders"),
	)
	authUC := auth.NewAuthUseCase(store.users, store.locations, resolver, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	app := httpRouter.NewApp(cfg.App.Name)
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Sabana Pedidos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		Orders:       orderSvc,
		Dispatcher:   dispatcher,
		LocationUC:   usecase.NewLocationUseCase(store.locations),
		ProductUC:    usecase.NewProductUseCase(store.products, store.locations, ledger),
		FavoriteUC:   usecase.NewFavoriteUseCase(store.favorites, store.products, dispatcher, log.Component("favorites")),
		CardUC:       usecase.NewCardUseCase(store.cards, store.users),
		SessionUC:    usecase.NewSessionUseCase(sessions, store.locations, store.products, cfg.Session.TTL),
		DashboardUC:  analytics.NewDashboardUseCase(store.orders, store.locations),
		UserUC:       usecase.NewUserUseCase(store.users, store.locations),
		RoleResolver: resolver,
		JWTSecret:    cfg.JWT.Secret,
		Logger:       log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
