package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/uprez/upgrade-engine/internal/config"
	"github.com/uprez/upgrade-engine/internal/copywriter"
	"github.com/uprez/upgrade-engine/internal/database"
	"github.com/uprez/upgrade-engine/internal/handler"
	appmw "github.com/uprez/upgrade-engine/internal/middleware"
	"github.com/uprez/upgrade-engine/internal/queue"
	"github.com/uprez/upgrade-engine/internal/repository"
	"github.com/uprez/upgrade-engine/internal/router"
	"github.com/uprez/upgrade-engine/internal/service"
)

func main() {
	// Load a local .env when present; in production the variables come
	// from the real environment and this is a no-op.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	e := echo.New()

	// The session scope must be resolved before caching or rate
	// limiting so their keys can include it.
	e.Use(appmw.SessionScope())

	// Redis is optional: when it is unreachable the middleware
	// constructors receive nil and pass every request through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(appmw.NewRedisCache(config.LoadCacheConfig(), rdb))

	// Repositories over the shared connection pool.
	propRepo := repository.NewPropertyRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	offerRepo := repository.NewOfferRepo(db)
	settingsRepo := repository.NewHostSettingsRepo(db)

	// The copywriter is nil without an API key; the engine then keeps
	// its deterministic fallback copy everywhere.
	var copyGen service.CopyGenerator
	if client := copywriter.NewFromEnv(); client != nil {
		copyGen = client
	} else {
		log.Println("no OPENAI_API_KEY set; offer copy uses fallback text")
	}

	publisher := queue.NewPublisher()

	svc := service.NewOfferService(propRepo, bookingRepo, offerRepo, settingsRepo, copyGen, publisher)

	router.RegisterRoutes(e)
	router.RegisterOffers(e, handler.NewOfferHandler(svc))
	router.RegisterCatalog(e, handler.NewBookingHandler(bookingRepo), handler.NewPropertyHandler(propRepo))
	router.RegisterHosts(e, handler.NewHostSettingsHandler(settingsRepo))
	router.RegisterDemo(e, handler.NewDemoHandler(svc))

	// Consume offer.created events in the background; the consumer
	// reconnects on its own and the server does not depend on it.
	go func() {
		if err := queue.StartOfferConsumer(); err != nil {
			log.Printf("offer consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
