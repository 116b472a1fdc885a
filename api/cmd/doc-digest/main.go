package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"doc-digest/api/internal/app"
	"doc-digest/api/internal/config"
	"doc-digest/api/internal/handle"
	"doc-digest/api/internal/httpserver"
)

var (
	cfgFile string
	port    string
)

var rootCmd = &cobra.Command{
	Use:          "doc-digest",
	Short:        "Extract text from PDFs and images and summarise it with Gemini",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "YAML config file (environment variables take precedence)")
	rootCmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
}

func serve(ctx context.Context, cfg *config.Config) error {
	svc, err := app.NewServices(cfg)
	if err != nil {
		return err
	}
	log.Printf("ocr engine: %s", svc.Extract.EngineName())
	log.Printf("gemini: %s via %s", svc.Analyze.Model(), cfg.GeminiTransport)
	if cfg.GeminiAPIKey == "" {
		log.Printf("warning: GEMINI_API_KEY is empty; /analyze will report it per request")
	}
	log.Printf("cors origins: %v", cfg.CORSAllowedOrigins)

	mux := handle.New(svc.Extract, svc.Analyze).Routes()
	cors := httpserver.NewCORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	h := httpserver.Chain(mux,
		httpserver.WithRequestID,
		httpserver.WithAccessLog,
		cors.Middleware,
	)

	return httpserver.Run(ctx, httpserver.New(":"+cfg.Port, h))
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("doc-digest: %v", err)
		stop()
		os.Exit(1)
	}
}
