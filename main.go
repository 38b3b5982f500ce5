package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"npj/calendar"
	"npj/config"
	"npj/db"
	"npj/mailer"
	"npj/middlewares"
	"npj/models"
	"npj/routes"
	"npj/utils"
	"npj/workflow"
)

func main() {
	cfg := config.Load()

	// Postgres
	sqldb, err := db.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres:", err)
	}
	defer sqldb.Close()
	if err := db.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		log.Fatal("migrate:", err)
	}

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mg, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("mongo.Connect error:", err)
	}
	if err := mg.Ping(ctx, nil); err != nil {
		log.Fatal("mongo ping error:", err)
	}
	defer func() { _ = mg.Disconnect(context.Background()) }()

	attachmentsCol := mg.Database(cfg.MongoDB).Collection("attachments")

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	inv := utils.NewCacheInvalidator(rdb)

	// Mail: no-op unless SMTP is configured.
	var mail mailer.Mailer = mailer.Disabled{}
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	// Calendar: no-op unless Google credentials are configured.
	var cal calendar.Calendar = calendar.Disabled{}
	if cfg.GoogleCredentialsFile != "" {
		g, err := calendar.NewGoogle(context.Background(), cfg.GoogleCredentialsFile, cfg.GoogleCalendarID)
		if err != nil {
			log.Printf("google calendar disabled: %v", err)
		} else {
			cal = g
		}
	}

	users := models.NewSQLUserRepository(sqldb)
	cases := models.NewSQLCaseRepository(sqldb)
	events := models.NewSQLEventRepository(sqldb)
	participants := models.NewSQLParticipantRepository(sqldb)
	notifications := models.NewSQLNotificationRepository(sqldb)
	attachments := models.NewMongoAttachmentRepository(attachmentsCol)

	wf := workflow.NewService(events, participants, users, cases, notifications, mail, cal)

	server := gin.Default()
	server.Use(middlewares.ResponseCache(rdb, 30*time.Second))

	routes.RegisterRoutes(server, routes.Deps{
		Users:         users,
		Cases:         cases,
		Attachments:   attachments,
		Notifications: notifications,
		Workflow:      wf,
		Inv:           inv,
	}, rdb)

	if err := server.Run(cfg.HTTPAddr); err != nil {
		log.Fatal("gin.Run error:", err)
	}
}
