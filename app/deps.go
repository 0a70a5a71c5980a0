package app

import (
	"bitwise74/secure-file-ops/aws"
	"bitwise74/secure-file-ops/config"
	"bitwise74/secure-file-ops/db"
	"bitwise74/secure-file-ops/internal"
	"bitwise74/secure-file-ops/internal/service"
	"bitwise74/secure-file-ops/internal/storage"
	"bitwise74/secure-file-ops/pkg/security"
	"bitwise74/secure-file-ops/pkg/util"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// NewDeps connects to every external collaborator the config points at
func NewDeps(ctx context.Context, cfg *config.Config) (*internal.Deps, error) {
	var dbOpts []db.Option
	if util.IsRunningInDocker() {
		dbOpts = append(dbOpts, db.RequireMountedFile())
	}

	conn, err := db.New(cfg.DB.Driver, cfg.DB.DSN, dbOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %v storage, %w", cfg.Storage.Type, err)
	}

	var mailer service.Mailer = service.LogMailer{}
	if cfg.Mail.Enabled {
		mailer = service.NewSMTPMailer(service.SMTPOptions{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			Sender:   cfg.Mail.Sender,
			LinkTTL:  cfg.Security.TokenTTL,
		})
	}

	return BuildDeps(cfg, conn, store, mailer)
}

// BuildDeps wires the services on top of already connected collaborators
func BuildDeps(cfg *config.Config, conn *gorm.DB, store storage.Store, mailer service.Mailer) (*internal.Deps, error) {
	tokens, err := security.NewTokenService(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		return nil, err
	}

	codec, err := security.NewCodec(cfg.Security.EncryptionSecret)
	if err != nil {
		return nil, err
	}

	return &internal.Deps{
		Config: cfg,
		DB:     conn,
		Argon:  security.NewPasswordHasher(),
		Tokens: tokens,
		Codec:  codec,
		Store:  store,
		Users:  service.NewDirectory(conn),
		Files:  service.NewFiles(conn, store, codec, cfg.Host.BaseURL),
		Mailer: mailer,
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "s3":
		c, err := aws.NewS3(ctx, aws.Options{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Endpoint:        cfg.S3.Endpoint,
		})
		if err != nil {
			return nil, err
		}

		return storage.NewS3(c.C, *c.Bucket), nil
	case "minio":
		return storage.NewMinio(ctx, storage.MinioOptions{
			Endpoint:        cfg.Minio.Endpoint,
			AccessKeyID:     cfg.Minio.AccessKeyID,
			SecretAccessKey: cfg.Minio.SecretAccessKey,
			Bucket:          cfg.Minio.Bucket,
			UseSSL:          cfg.Minio.UseSSL,
		})
	default:
		return storage.NewLocal(cfg.Storage.LocalPath)
	}
}
