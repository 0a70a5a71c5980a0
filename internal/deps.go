package internal

import (
	"bitwise74/secure-file-ops/config"
	"bitwise74/secure-file-ops/internal/service"
	"bitwise74/secure-file-ops/internal/storage"
	"bitwise74/secure-file-ops/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Argon  *security.PasswordHasher
	Tokens *security.TokenService
	Codec  *security.Codec
	Store  storage.Store
	Users  *service.Directory
	Files  *service.Files
	Mailer service.Mailer
}
