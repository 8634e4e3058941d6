package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sabanapos/pedidos-api/internal/application/analytics"
	"github.com/sabanapos/pedidos-api/internal/application/auth"
	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/application/ordering"
	"github.com/sabanapos/pedidos-api/internal/application/usecase"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	Orders       *ordering.Service
	Dispatcher   *notification.Dispatcher
	LocationUC   *usecase.LocationUseCase
	ProductUC    *usecase.ProductUseCase
	FavoriteUC   *usecase.FavoriteUseCase
	CardUC       *usecase.CardUseCase
	SessionUC    *usecase.SessionUseCase
	DashboardUC  *analytics.DashboardUseCase
	UserUC       *usecase.UserUseCase
	RoleResolver role.Resolver
	JWTSecret    string
	Logger       zerolog.Logger
}

// NewApp crea la aplicación Fiber del servicio.
// Sin WriteTimeout: /api/notifications/stream mantiene la respuesta abierta.
// Immutable: los parámetros de ruta terminan guardados en los repositorios en memoria y no pueden
// apuntar al buffer que fasthttp reutiliza entre peticiones.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:     name,
		Immutable:   true,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	})
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	feature := func(f role.Feature) fiber.Handler { return RequireFeature(f, deps.RoleResolver) }

	protected.Get("/me", NewUserHandler(deps.UserUC).Me)

	// Puntos de venta y menú
	locationHandler := NewLocationHandler(deps.LocationUC)
	productHandler := NewProductHandler(deps.ProductUC)
	orderHandler := NewOrderHandler(deps.Orders)

	locations := protected.Group("/locations")
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Get("/:id/products", productHandler.ListByLocation)
	locations.Post("/:id/products", feature(role.FeatureInventoryManagement), productHandler.Create)
	locations.Get("/:id/low-stock", feature(role.FeatureInventoryManagement), productHandler.LowStock)
	locations.Get("/:id/orders", feature(role.FeatureOrderManagement), orderHandler.ListByLocation)
	locations.Get("/:id/dashboard", feature(role.FeatureInventoryManagement), NewDashboardHandler(deps.DashboardUC).GetSummary)

	products := protected.Group("/products")
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", feature(role.FeatureInventoryManagement), productHandler.Update)
	products.Post("/:id/restock", feature(role.FeatureInventoryManagement), productHandler.Restock)

	// Órdenes
	orders := protected.Group("/orders")
	orders.Post("/validate", feature(role.FeatureOrderValidation), orderHandler.Validate)
	orders.Post("/", feature(role.FeatureOrderCreate), orderHandler.Create)
	orders.Get("/", feature(role.FeatureOrderStatusRead), orderHandler.List)
	orders.Get("/pending", orderHandler.Pending)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/receipt", orderHandler.Receipt)
	orders.Patch("/:id/status", feature(role.FeatureOrderManagement), orderHandler.UpdateStatus)

	// Notificaciones
	notifHandler := NewNotificationHandler(deps.Dispatcher, deps.Logger)
	notifs := protected.Group("/notifications")
	notifs.Get("/", notifHandler.List)
	notifs.Get("/stream", notifHandler.Stream)
	notifs.Patch("/read-all", notifHandler.MarkAllRead)
	notifs.Patch("/:id/read", notifHandler.MarkRead)
	notifs.Delete("/:id", notifHandler.Delete)

	// Favoritos
	favHandler := NewFavoriteHandler(deps.FavoriteUC)
	favs := protected.Group("/favorites")
	favs.Get("/", feature(role.FeatureFavoritesRead), favHandler.List)
	favs.Post("/", feature(role.FeatureFavoritesWrite), favHandler.Add)
	favs.Delete("/:productId", feature(role.FeatureFavoritesWrite), favHandler.Remove)

	// Tarjetas y saldo (solo clientes)
	cardHandler := NewCardHandler(deps.CardUC)
	cards := protected.Group("/cards", feature(role.FeatureCards))
	cards.Get("/", cardHandler.List)
	cards.Post("/", cardHandler.Add)
	cards.Delete("/:id", cardHandler.Delete)

	balance := protected.Group("/balance", feature(role.FeatureBalance))
	balance.Get("/", cardHandler.Balance)
	balance.Post("/top-up", cardHandler.TopUp)

	// Sesión de carrito
	sessionHandler := NewSessionHandler(deps.SessionUC)
	session := protected.Group("/session", feature(role.FeatureCartSession))
	session.Post("/", sessionHandler.Open)
	session.Get("/", sessionHandler.Get)
	session.Delete("/", sessionHandler.Close)
	session.Put("/location", sessionHandler.SelectLocation)
	session.Put("/cart", sessionHandler.SetCart)
	session.Put("/pending-order", sessionHandler.SetPendingOrder)
}
