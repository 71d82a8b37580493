package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/planhive/planhive/internal/apiserver/database"
	"github.com/planhive/planhive/internal/apiserver/handler"
	"github.com/planhive/planhive/internal/apiserver/middleware"
	"github.com/planhive/planhive/internal/auth/jwt"
	"github.com/planhive/planhive/internal/common/config"
	"github.com/planhive/planhive/pkg/logger"
	"github.com/planhive/planhive/pkg/version"
	"github.com/planhive/planhive/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Planhive API Server",
		Long:  `Planhive API Server provides the multi-tenant project and task management API`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "configs/apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

// ensureSuperAdmin seeds the reserved super administrator account when absent
func ensureSuperAdmin(ctx context.Context, db database.Database, cfg config.SuperAdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	_, err := db.GetSuperAdminByEmail(ctx, cfg.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.CreateUser(ctx, &database.User{
		Email:        cfg.Email,
		PasswordHash: string(hashed),
		FullName:     cfg.FullName,
		Role:         database.RoleSuperAdmin,
		IsActive:     true,
	})
}

func run() {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := ensureSuperAdmin(context.Background(), db, cfg.SuperAdmin); err != nil {
		zapLogger.Fatal("Failed to seed super admin", zap.Error(err))
	}

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		zapLogger.Fatal("Failed to create JWT service", zap.Error(err))
	}

	zapLogger.Info("Starting apiserver",
		zap.String("version", version.Get()),
		zap.Int("port", cfg.Server.Port))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RecoveryMiddleware(zapLogger))
	r.Use(middleware.LoggerMiddleware(zapLogger))
	r.Use(middleware.MetricsMiddleware())
	if cfg.Server.CORS != nil {
		r.Use(middleware.CORSMiddleware(cfg.Server.CORS))
	}

	h := handler.NewHandler(db, jwtService, cfg.SuperAdmin, zapLogger)
	registerRoutes(r, h, jwtService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Forced shutdown", zap.Error(err))
	}
}

func registerRoutes(r *gin.Engine, h *handler.Handler, jwtService *jwt.Service) {
	r.GET("/api/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)

	authed := r.Group("/api", middleware.JWTAuthMiddleware(jwtService))
	{
		authed.GET("/auth/me", h.Me)
		authed.POST("/auth/logout", h.Logout)

		authed.GET("/tenants", h.ListTenants)
		authed.GET("/tenants/:id", h.GetTenant)
		authed.PUT("/tenants/:id", h.UpdateTenant)
		authed.GET("/tenants/:id/users", h.ListTenantUsers)
		authed.POST("/tenants/:id/users", h.AddTenantUser)

		authed.PUT("/users/:id", h.UpdateUser)
		authed.DELETE("/users/:id", h.DeleteUser)

		authed.GET("/projects", h.ListProjects)
		authed.POST("/projects", h.CreateProject)
		authed.PUT("/projects/:id", h.UpdateProject)
		authed.DELETE("/projects/:id", h.DeleteProject)

		authed.GET("/projects/:id/tasks", h.ListTasks)
		authed.POST("/projects/:id/tasks", h.CreateTask)
		authed.PUT("/projects/:id/tasks/:taskId", h.UpdateTask)
		authed.PATCH("/projects/:id/tasks/:taskId", h.PatchTaskStatus)
		authed.DELETE("/projects/:id/tasks/:taskId", h.DeleteTask)
	}

	// Embedded single-page frontend
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/app", http.FS(staticFS))
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/app/")
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
