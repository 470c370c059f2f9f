package http

import (
	"net/http"

	"fintra/internal/auth"
	"fintra/internal/config"
	"fintra/internal/http/handler"
	mw "fintra/internal/http/middleware"
	"fintra/internal/ledger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, gdb *gorm.DB, log logrus.FieldLogger) http.Handler {
	hasher := auth.NewHasher(cfg.PasswordPepper, auth.Argon2Params{
		Memory:      cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: uint8(cfg.Argon2Parallelism),
		KeyLength:   auth.DefaultArgon2Params.KeyLength,
	})
	jwtSvc := auth.NewJWT(cfg.JWTSecret)

	users := auth.NewIdentityStore(gdb, cfg.StoreTimeout)
	accounts := &auth.Service{
		Users:    users,
		Hasher:   hasher,
		Tokens:   jwtSvc,
		TokenTTL: cfg.TokenTTL,
		Log:      log,
	}
	gate := auth.NewGate(jwtSvc, users)
	ledgerSvc := ledger.NewService(ledger.NewStore(gdb, cfg.StoreTimeout))

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(log))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	health := &handler.HealthHandler{DB: gdb, Timeout: cfg.StoreTimeout, Log: log}
	r.Get("/health", health.Health)
	r.Get("/docs", handler.Docs)

	ah := &handler.AuthHandler{
		Accounts:     accounts,
		TokenTTL:     cfg.TokenTTL,
		CookieSecure: cfg.CookieSecure,
		Log:          log,
	}
	r.Post("/create-user", ah.CreateUser)
	r.Post("/login", ah.Login)
	r.Post("/logout", ah.Logout)

	lh := &handler.LedgerHandler{Ledger: ledgerSvc, Log: log}
	r.Group(func(r chi.Router) {
		r.Use(auth.Resolve(gate, log))
		r.Use(auth.RequireIdentity)

		r.Post("/transaction", lh.CreateTransaction)
		r.Get("/balance", lh.Balance)
	})

	return r
}
