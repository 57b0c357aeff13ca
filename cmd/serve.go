package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/kozaktomas/smart-attendance/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Smart Attendance web server.
The server owns the configured camera and exposes register, check-in and
check-out intents over HTTP. Status and countdown updates stream over SSE
on /api/v1/events.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	board := status.NewBoard()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg, board)
	if err != nil {
		return err
	}
	defer a.Close()

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, web.Deps{
		Service: a.service,
		Board:   board,
		Camera:  a.camera,
		Oracle:  a.oracle,
		Logger:  a.log,
	}, port, host)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Smart Attendance on http://%s:%d\n", host, port)
	fmt.Printf("Oracle: %s (%s), storage: %s, camera: %s\n",
		cfg.Oracle.Provider, cfg.Oracle.MatchMode, a.backend.Name(), a.camera.Name())
	if cfg.Web.JWTSecret == "" {
		fmt.Println("Warning: WEB_JWT_SECRET is not set, intents are not authenticated")
	}
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
