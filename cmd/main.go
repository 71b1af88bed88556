package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"ticketgogo/backend/internal/api/handler"
	"ticketgogo/backend/internal/config"
	"ticketgogo/backend/internal/localization"
	"ticketgogo/backend/internal/models"
	"ticketgogo/backend/internal/opsfeed"
	"ticketgogo/backend/internal/session"
	"ticketgogo/backend/internal/storage"
	"ticketgogo/backend/internal/telegram"
	"ticketgogo/backend/internal/ticket"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Ticket{},
		&models.TicketMessage{},
		&models.Setting{},
		&models.Autoresponder{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting TicketGoGo Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	if err := s.EnsureDefaultSettings(); err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}

	loc, err := localization.NewLocalizer(cfg.LocalePath)
	if err != nil {
		log.Fatalf("Failed to load localization: %v", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}

	sessions := session.NewStore(config.DraftTTL)
	transport := telegram.NewClient(api)
	tickets := ticket.NewService(s, transport, sessions, loc, cfg.ModGroupID)
	botService := telegram.NewBotService(api, transport, s, tickets, sessions, loc, cfg.ModGroupID)

	hub := opsfeed.NewManager()
	hub.StartPubSubListener(s)

	go hub.Run()
	go botService.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, s, []byte(cfg.JWTSecret))

	r.GET("/healthz", h.Healthz)
	r.POST("/token", h.IssueToken)
	authorized := r.Group("/", h.AuthMiddleware())
	authorized.GET("/stats", h.GetStats)
	authorized.GET("/ws/feed", h.ServeFeed)

	server := &http.Server{
		Addr:           cfg.APIAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
