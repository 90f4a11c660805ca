package main

import (
	"context"
	"encoding/base64"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"crewtrack.in/crewtrack/core"
	"crewtrack.in/crewtrack/infrastructure/communication"
	"crewtrack.in/crewtrack/infrastructure/devops"
	"crewtrack.in/crewtrack/web/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx := context.Background()
	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}

	jwtSecret, err := base64.StdEncoding.DecodeString(cfg.SigningSecret)
	if err != nil {
		log.Fatal("Failed to decode JWT secret:", err)
	}

	dm, err := core.New(cfg.DSN, cfg.MaxConnections, core.LogLevelWarn)
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	if err := dm.Migrate(); err != nil {
		log.Fatal(err)
	}

	var dispatcher core.OTPDispatcher
	if cfg.MailFrom != "" {
		mailer, err := communication.NewSESMailer(ctx, cfg.MailFrom)
		if err != nil {
			log.Fatal(err)
		}
		dispatcher = mailer
	} else {
		log.Println("MAIL_FROM not set, OTP codes will only be logged")
		dispatcher = logDispatcher{}
	}

	users := core.NewGormUserRepository(dm)
	sites := core.NewGormSiteRepository(dm)
	store := core.NewAttendanceStore(core.NewGormAttendanceRepository(dm))
	auth := core.NewAuthService(users, sites, dispatcher, core.DefaultBootstrapPolicy(), cfg.SigningSecret)

	r := gin.Default()
	handlers.Register(r, handlers.Services{
		Store:     store,
		Auth:      auth,
		Sites:     sites,
		Alerts:    communication.ConnectSlack(),
		JWTSecret: jwtSecret,
	})

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}

// logDispatcher is the dev fallback when SES is not configured.
type logDispatcher struct{}

func (logDispatcher) DispatchOTP(ctx context.Context, email, code string) error {
	log.Printf("OTP for %s: %s", email, code)
	return nil
}
