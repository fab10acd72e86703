package piiscan

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/redactyl/piiscan/internal/engine"
	"github.com/redactyl/piiscan/internal/server"
)

var (
	serveAddr     string
	serveMaxBytes int64
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scan API over HTTP",
		Long: `Serve the scan API over HTTP.

  GET  /healthz     liveness
  GET  /v1/labels   labels and base weights
  POST /v1/scan     {"text": "...", "floor": 0, "blocked_labels": [...], "thresholds": {...}}`,
		RunE: runServe,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	cmd.Flags().Int64Var(&serveMaxBytes, "max-body-bytes", server.DefaultMaxBodyBytes, "largest accepted request body")
	cmd.Flags().StringVar(&flagPolicy, "policy", "", "policy used when a request carries none")
	cmd.Flags().Float64Var(&flagThreshold, "threshold", 0.5, "default policy threshold")
	cmd.Flags().StringVar(&flagEnable, "enable", "", "only report these labels (comma-separated)")
	cmd.Flags().StringVar(&flagDisable, "disable", "", "never report these labels (comma-separated)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := newLogger(cmd.ErrOrStderr())
	if !flagVerbose {
		gin.SetMode(gin.ReleaseMode)
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	gcfg, lcfg, err := loadConfigs(wd)
	if err != nil {
		return err
	}
	cfg, err := engineConfig(cmd, wd, lcfg, gcfg)
	if err != nil {
		return err
	}
	prof, err := loadProfile(cmd, lcfg, gcfg)
	if err != nil {
		return err
	}

	router := server.NewRouter(server.Options{
		Detector:         engine.NewDetector(cfg),
		Profile:          prof,
		DefaultThreshold: prof.DefaultThreshold,
		MaxBodyBytes:     serveMaxBytes,
		Logger:           log,
		Version:          version,
	})
	return server.Run(cmd.Context(), serveAddr, router, log)
}
