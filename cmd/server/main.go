package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/unrolled/secure"

	"github.com/rankwise/rankwise-api/internal/config"
	"github.com/rankwise/rankwise-api/internal/database"
	"github.com/rankwise/rankwise-api/internal/handler"
	"github.com/rankwise/rankwise-api/internal/queue"
	"github.com/rankwise/rankwise-api/internal/repository"
	"github.com/rankwise/rankwise-api/internal/router"
	"github.com/rankwise/rankwise-api/internal/service"
	"github.com/rankwise/rankwise-api/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(cfg)
	if rdb == nil {
		log.Print("redis unavailable; plan quotas disabled")
	}

	tokens := token.NewService(token.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})

	users := repository.NewUserRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	articles := repository.NewArticleRepo(db)
	reports := repository.NewSEOReportRepo(db)

	var events handler.SignupEvents
	if cfg.RabbitURL != "" {
		events = queue.NewPublisher(cfg.RabbitURL)
		go queue.StartSignupConsumer(cfg.RabbitURL)
	} else {
		log.Print("rabbitmq not configured; signup events disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(e)

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echo.WrapMiddleware(secureMiddleware.Handler))

	router.Register(e, router.Deps{
		Auth:          handler.NewAuthHandler(users, subs, tokens, events, cfg.BcryptCost),
		Subscriptions: handler.NewSubscriptionHandler(subs),
		Articles:      handler.NewArticleHandler(articles, reports),
		Keywords:      handler.NewKeywordsHandler(service.NewGeminiClient(cfg.GeminiAPIKey)),
		Tokens:        tokens,
		Redis:         rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
