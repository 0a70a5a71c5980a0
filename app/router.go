package app

import (
	"bitwise74/secure-file-ops/app/auth"
	"bitwise74/secure-file-ops/app/file"
	"bitwise74/secure-file-ops/app/root"
	"bitwise74/secure-file-ops/internal"
	"bitwise74/secure-file-ops/internal/model"
	"bitwise74/secure-file-ops/pkg/middleware"
	"bitwise74/secure-file-ops/pkg/validators"
	"net/http"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

func NewRouter(d *internal.Deps) *gin.Engine {
	cfg := d.Config
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.Host.CORS,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 4 << 20

	authenticated := middleware.Authenticated(d.Tokens, d.Users)
	ops := middleware.RequireRole(model.RoleOps)
	client := middleware.RequireRole(model.RoleClient)
	verified := middleware.RequireVerified()

	// Leaves room for the multipart framing, oversize files get the same 400 as
	// ones caught by the validator
	uploadLimit := middleware.BodySizeLimiterWith(validators.MaxFileSize+1<<20, http.StatusBadRequest, validators.ErrFileTooLarge.Error())

	// HEAD /heartbeat		-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)

	a := router.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /auth/signup				-> Registers a new user and returns a session token
		a.POST("/signup", func(c *gin.Context) { auth.Signup(c, d) })

		// POST /auth/login					-> Returns a session token for valid credentials
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /auth/resend-verification-email	-> Mails a new verification link to a client
		a.POST("/resend-verification-email", authenticated, client, func(c *gin.Context) { auth.ResendVerification(c, d) })

		// GET /auth/verify-email?token=		-> Marks the email in the token as verified
		a.GET("/verify-email", func(c *gin.Context) { auth.VerifyEmail(c, d) })
	}

	f := router.Group("/files", authenticated)
	{
		// POST /files/upload				-> Stores an office document
		f.POST("/upload", ops, uploadLimit, func(c *gin.Context) { file.Upload(c, d) })

		// GET /files/download-link/:file_id	-> Returns an encrypted download link for a file
		f.GET("/download-link/:file_id", client, verified, func(c *gin.Context) { file.DownloadLink(c, d) })

		// GET /files/download/:encrypted_link	-> Streams the file behind a download link
		f.GET("/download/:encrypted_link", client, verified, func(c *gin.Context) { file.Download(c, d) })

		list := []gin.HandlerFunc{client, verified}
		if cfg.Files.ListCacheSeconds > 0 {
			list = append(list, cacheFor(cfg.Files.ListCacheSeconds))
		}
		list = append(list, func(c *gin.Context) { file.List(c, d) })

		// GET /files/ and /files/files		-> Lists every active file
		f.GET("/", list...)
		f.GET("/files", list...)
	}

	return router
}

// MakeLogger replaces the global zap logger with a development one writing
// at the given level
func MakeLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(log)
	return nil
}

// cacheFor caches responses by URI. A cache hit replays the stored headers,
// the request ID is put back so it matches the one in the logs
func cacheFor(sec int) gin.HandlerFunc {
	store := persist.NewMemoryStore(time.Minute)
	cached := cache.CacheByRequestURI(store, time.Second*time.Duration(sec))

	return func(c *gin.Context) {
		c.Writer = &requestIDWriter{ResponseWriter: c.Writer, id: c.GetString("requestID")}
		cached(c)
	}
}

type requestIDWriter struct {
	gin.ResponseWriter
	id string
}

func (w *requestIDWriter) Write(b []byte) (int, error) {
	w.Header().Set("X-Request-ID", w.id)
	return w.ResponseWriter.Write(b)
}

func (w *requestIDWriter) WriteString(s string) (int, error) {
	w.Header().Set("X-Request-ID", w.id)
	return w.ResponseWriter.WriteString(s)
}

func (w *requestIDWriter) WriteHeaderNow() {
	w.Header().Set("X-Request-ID", w.id)
	w.ResponseWriter.WriteHeaderNow()
}
