package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/examsolver/internal/gcp"
	"github.com/Lllllllleong/examsolver/internal/server"
	"github.com/Lllllllleong/examsolver/internal/services"
)

const functionName = "HandleExamSolver"

var (
	handler http.Handler
	once    sync.Once
	initErr error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the HTTP function with the framework. It serves the page and the API.
	functions.HTTP(functionName, handleExamSolver)
}

// newHandler builds the server once per instance.
func newHandler() (http.Handler, error) {
	if err := gcp.LoadDotEnv(); err != nil {
		return nil, err
	}
	config, err := server.LoadConfig()
	if err != nil {
		return nil, err
	}
	solver, err := services.NewSolverFromEnv()
	if err != nil {
		return nil, err
	}
	srv, err := server.New(solver, services.NewPaginator(services.DefaultGeometry()), *config)
	if err != nil {
		return nil, err
	}
	go srv.RunSweeper(context.Background())
	slog.Info("Exam solver initialized.", "maxUploadBytes", config.MaxUploadBytes, "sessionIdleTtl", config.SessionIdleTTL.String())
	return srv.Routes(), nil
}

func handleExamSolver(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		handler, initErr = newHandler()
	})
	if initErr != nil {
		slog.Error("CRITICAL: Exam solver initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	handler.ServeHTTP(w, r)
}

// main runs the function locally; on Cloud Functions the framework owns startup.
func main() {
	if os.Getenv("FUNCTION_TARGET") == "" {
		os.Setenv("FUNCTION_TARGET", functionName)
	}
	port := gcp.GetEnv("PORT", "8080")
	slog.Info("Starting exam solver.", "port", port)
	if err := funcframework.Start(port); err != nil {
		slog.Error("funcframework.Start failed", "error", err)
		os.Exit(1)
	}
}
