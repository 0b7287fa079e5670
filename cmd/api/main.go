package main

import (
	"database/sql"
	"log"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meatkart/meat-delivery-backend/internal/config"
	"github.com/meatkart/meat-delivery-backend/internal/events"
	"github.com/meatkart/meat-delivery-backend/internal/metrics"
	"github.com/meatkart/meat-delivery-backend/internal/order"
	"github.com/meatkart/meat-delivery-backend/internal/partner"
	"github.com/meatkart/meat-delivery-backend/internal/payment"
	"github.com/meatkart/meat-delivery-backend/internal/shop"
	"github.com/meatkart/meat-delivery-backend/internal/tracking"
	"github.com/meatkart/meat-delivery-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	mustEnsureSchema(db)

	// optional infrastructure: the service runs without Redis or RabbitMQ
	locations := tracking.New(cfg.RedisAddr)
	defer locations.Close()

	pub, err := events.NewPublisher(cfg.RabbitMQURL, "order_events")
	if err != nil {
		log.Printf("rabbitmq disabled: %v", err)
	}
	defer pub.Close()

	// gateway client is constructed regardless of credentials; payment
	// endpoints fail with a gateway error instead of blocking startup
	gateway := payment.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	userRepo := user.NewPostgresRepository(db)
	shopRepo := shop.NewPostgresRepository(db)
	partnerService := partner.NewService(partner.NewPostgresRepository(db))

	orderService := order.NewService(order.NewPostgresRepository(db),
		userRepo, shopRepo, partnerService, gateway, pub, cfg.DeliveryEarning)
	orderHandler := order.NewHandler(orderService, locations)
	partnerHandler := partner.NewHandler(partnerService, locations)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "unauthorized",
			})
		},
	}))

	orderHandler.RegisterProtectedRoutes(app)
	partnerHandler.RegisterProtectedRoutes(app)

	log.Printf("listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func mustOpenDB(url string) *sql.DB {
	if url == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	return db
}

func mustEnsureSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			"userID" INT NOT NULL,
			"userName" TEXT NOT NULL DEFAULT '',
			"userPhone" TEXT NOT NULL DEFAULT '',
			items JSONB NOT NULL DEFAULT '[]',
			"deliveryAddress" JSONB NOT NULL DEFAULT '{}',
			"shopID" INT NOT NULL,
			"shopName" TEXT NOT NULL DEFAULT '',
			"itemTotal" numeric NOT NULL DEFAULT 0,
			"deliveryFee" numeric NOT NULL DEFAULT 0,
			taxes numeric NOT NULL DEFAULT 0,
			"grandTotal" numeric NOT NULL DEFAULT 0,
			"razorpayOrderId" TEXT NOT NULL DEFAULT '',
			"razorpayPaymentId" TEXT NOT NULL DEFAULT '',
			"razorpaySignature" TEXT NOT NULL DEFAULT '',
			"paymentMethod" TEXT NOT NULL DEFAULT '',
			"paymentStatus" TEXT NOT NULL DEFAULT 'pending',
			status TEXT NOT NULL DEFAULT 'pending',
			"partnerID" INT,
			"partnerName" TEXT,
			"estimatedDelivery" TEXT NOT NULL DEFAULT '',
			"createdAt" TIMESTAMPTZ NOT NULL,
			"updatedAt" TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS orders_user_idx ON orders ("userID", "createdAt" DESC)`,
		`CREATE TABLE IF NOT EXISTS delivery_partners (
			"partnerID" SERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'offline',
			"totalDeliveries" INT NOT NULL DEFAULT 0,
			"totalEarnings" numeric NOT NULL DEFAULT 0,
			"todayDeliveries" INT NOT NULL DEFAULT 0,
			"todayEarnings" numeric NOT NULL DEFAULT 0,
			"weeklyEarnings" numeric NOT NULL DEFAULT 0,
			"monthlyEarnings" numeric NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			"userID" SERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			"totalOrders" INT NOT NULL DEFAULT 0,
			"totalSpent" numeric NOT NULL DEFAULT 0
		)`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS "totalOrders" INT NOT NULL DEFAULT 0`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS "totalSpent" numeric NOT NULL DEFAULT 0`,
		`CREATE TABLE IF NOT EXISTS shops (
			"shopID" SERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			"totalOrders" INT NOT NULL DEFAULT 0,
			"totalRevenue" numeric NOT NULL DEFAULT 0
		)`,
		`ALTER TABLE shops ADD COLUMN IF NOT EXISTS "totalOrders" INT NOT NULL DEFAULT 0`,
		`ALTER TABLE shops ADD COLUMN IF NOT EXISTS "totalRevenue" numeric NOT NULL DEFAULT 0`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
	}
}
