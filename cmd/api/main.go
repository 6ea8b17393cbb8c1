package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bhramann/marketplace-api/internal/config"
	"github.com/bhramann/marketplace-api/internal/logging"
	minioRepo "github.com/bhramann/marketplace-api/internal/repository/minio"
	"github.com/bhramann/marketplace-api/internal/repository/postgres"
	"github.com/bhramann/marketplace-api/internal/service"
	transportHTTP "github.com/bhramann/marketplace-api/internal/transport/http"
	"github.com/bhramann/marketplace-api/internal/transport/mail"
	"github.com/bhramann/marketplace-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("Warning: logstash disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	storage, err := minioRepo.New(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect object storage: %v", err)
	}

	publicBase := cfg.MinIOPublicURL
	if publicBase == "" {
		scheme := "http"
		if cfg.MinIOUseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinIOEndpoint, cfg.MinIOBucket)
	}

	assets, err := service.NewAssetPipeline(storage, service.AssetPipelineConfig{
		Bucket:        cfg.MinIOBucket,
		PublicBaseURL: publicBase,
		MaxDimension:  cfg.MaxImageDimension,
	})
	if err != nil {
		log.Fatalf("configure asset pipeline: %v", err)
	}

	users := postgres.NewUserRepo(db)
	packages := postgres.NewPackageRepo(db)
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.MailBrand)
	tokens := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)

	authService := service.NewAuthService(users, mailer, tokens, service.AuthConfig{
		OTPTTL:          cfg.OTPTTL,
		ResetTokenTTL:   cfg.ResetTokenTTL,
		FrontendBaseURL: cfg.FrontendBaseURL,
	})
	packageService := service.NewPackageService(packages, assets)

	e := transportHTTP.NewRouter(cfg.AllowOrigins, cfg.BodyLimit)
	transportHTTP.RegisterAuth(e, authService)
	transportHTTP.RegisterPackages(e, authService, packageService)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
