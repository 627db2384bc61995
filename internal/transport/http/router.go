package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sheetboard-api/internal/application/admin"
	"github.com/sheetboard-api/internal/application/auth"
	fileapp "github.com/sheetboard-api/internal/application/file"
	"github.com/sheetboard-api/internal/config"
	"github.com/sheetboard-api/internal/domain"
	"github.com/sheetboard-api/internal/transport/http/handler"
	appmiddleware "github.com/sheetboard-api/internal/transport/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	OTPRepo     OTPRepository
	FileRepo    FileRepository
	Objects     ObjectStore
	Sheets      SheetReader
	Mailer      Mailer
	JWTProvider TokenProvider
	Logger      *zap.Logger
}

// NewRouter builds the application router. The returned stop func releases
// background workers and must be called on shutdown.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, func()) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider, deps.UserRepo, log)

	// 5 requests/second, burst of 10, on the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo: deps.UserRepo,
		OTPRepo:  deps.OTPRepo,
		Mailer:   deps.Mailer,
		Tokens:   deps.JWTProvider,
		Logger:   log.Named("auth"),
		OTPTTL:   cfg.OTPTTL,
	})
	adminSvc := admin.NewService(admin.ServiceDeps{
		UserRepo: deps.UserRepo,
		FileRepo: deps.FileRepo,
		Logger:   log.Named("admin"),
	})
	fileSvc := fileapp.NewService(fileapp.ServiceDeps{
		FileRepo: deps.FileRepo,
		Objects:  deps.Objects,
		Sheets:   deps.Sheets,
		Logger:   log.Named("file"),
	})

	authH := handler.NewAuthHandler(authSvc, log)
	adminH := handler.NewAdminHandler(adminSvc, log)
	fileH := handler.NewFileHandler(fileSvc, log, cfg.MaxUploadBytes)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", handler.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Post("/forgot-password", authH.ForgotPassword)
			r.Post("/verify-otp", authH.VerifyOTP)
			r.Post("/new-password", authH.NewPassword)
			r.Post("/create-new-password", authH.NewPassword)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/protected/profile", handler.Profile)

			r.Post("/files/upload", fileH.Upload)
			r.Get("/files/my-files", fileH.MyFiles)
			r.Get("/files/file/{id}", fileH.Rows)
			r.Get("/files/file/{id}/summary", fileH.Summary)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/protected/admin", handler.AdminArea)
				r.Get("/admin/users", adminH.ListUsers)
				r.Put("/admin/promote/{id}", adminH.Promote)
				r.Get("/admin/files", adminH.ListFiles)
				r.Get("/admin/all-files", adminH.ListFiles)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"endpoint not found","error":"not_found"}`))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"message":"method not allowed","error":"method_not_allowed"}`))
	})

	return r, sensitiveRL.Stop
}
