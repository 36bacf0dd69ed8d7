package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"filebox/internal/auth"
	"filebox/internal/config"
	"filebox/internal/handler"
	"filebox/internal/middleware"
	"filebox/internal/repository"
	authService "filebox/internal/service/auth"
	fsService "filebox/internal/service/filesystem"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging, mirrored to a log file when LOG_DIR is set
	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "server", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to create log file: %v", err)
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg.Environment, out)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"tree_mode", cfg.TreeMode,
		"local_mode", cfg.LocalMode(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.DatabaseURL, cfg.TablePrefix, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Create services
	authorizer := authService.NewOwnerBasedAuthorizer(store.Workspaces, store.Files)
	workspaceService := fsService.NewWorkspaceService(store.Workspaces, logger)
	fileService := fsService.NewFileService(store.Files, store.TxManager, authorizer, logger)
	treeService := fsService.NewTreeService(store.Files, authorizer, cfg.TreeMode, logger)

	// Authentication: verified bearer tokens, or everything attributed to the local user
	var authMiddleware func(http.Handler) http.Handler
	if cfg.LocalMode() {
		workspace, err := workspaceService.EnsureWorkspace(ctx, cfg.LocalUserID, cfg.DefaultWorkspace)
		if err != nil {
			log.Fatalf("Failed to ensure default workspace: %v", err)
		}
		logger.Info("local mode",
			"user_id", cfg.LocalUserID,
			"workspace_id", workspace.ID,
			"workspace", workspace.Name,
		)
		authMiddleware = middleware.LocalUser(cfg.LocalUserID)
	} else {
		jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		authMiddleware = middleware.AuthMiddleware(jwtVerifier)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Handlers{
		Workspaces: handler.NewWorkspaceHandler(workspaceService, logger),
		Files:      handler.NewFileHandler(fileService, logger),
		Tree:       handler.NewTreeHandler(treeService, logger),
	})

	logger.Info("services initialized", "driver", store.Driver)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	h := middleware.Chain(mux,
		corsHandler.Handler,
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
		authMiddleware,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
