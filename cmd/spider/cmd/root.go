// Package cmd - spider CLI commands
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wonny/stockspider/internal/domain/spider"
	"github.com/wonny/stockspider/internal/infra/database/postgres"
	spiderrepo "github.com/wonny/stockspider/internal/infra/database/postgres/spider"
	"github.com/wonny/stockspider/internal/infra/external/jqka"
	"github.com/wonny/stockspider/internal/infra/external/tushare"
	"github.com/wonny/stockspider/internal/pkg/config"
	"github.com/wonny/stockspider/internal/pkg/logger"
	spidersvc "github.com/wonny/stockspider/internal/service/spider"
)

var (
	// 공통 플래그
	verbose    bool
	withLog    bool
	compactOut bool
)

// rootCmd 루트 커맨드
var rootCmd = &cobra.Command{
	Use:   "spider",
	Short: "Stock spider - 10jqka / TuShare one-shot fetches",
	Long: `Stock spider - 10jqka / TuShare one-shot fetches

Usage:
    go run ./cmd/spider [command] <code>

Commands:
    report       latest finance report indicators
    positions    institutional holdings ratio
    free-shares  real free-floating A shares
    company      industry / main business
    snapshot     everything above in one document
`,
	SilenceUsage: true,
}

// Execute 루트 커맨드 실행
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&withLog, "fetch-log", false, "record runs in the fetch log (needs DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&compactOut, "compact", false, "single-line JSON output")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(positionsCmd)
	rootCmd.AddCommand(freeSharesCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// runtime wired service plus whatever must be closed afterwards
type runtime struct {
	svc   *spidersvc.Service
	close func()
}

// newRuntime loads config, initializes logging and wires the service
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{
		Level:  level,
		Format: "pretty",
	}); err != nil {
		return nil, err
	}

	rt := &runtime{close: func() {}}

	var fetchLogRepo spider.FetchLogRepository
	if withLog {
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo := spiderrepo.NewFetchLogRepository(pool.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		fetchLogRepo = repo
		rt.close = pool.Close
	}

	var reference spider.ReferenceTableAPI
	if cfg.Tushare.Token != "" {
		reference = tushare.NewClient(cfg.Tushare.Token,
			tushare.WithBaseURL(cfg.Tushare.BaseURL),
			tushare.WithTimeout(cfg.Tushare.Timeout),
			tushare.WithRateLimit(cfg.Tushare.RateLimit),
		)
	}

	jqkaClient := jqka.NewClient(
		jqka.WithBaseURL(cfg.JQKA.BaseURL),
		jqka.WithTimeout(cfg.JQKA.Timeout),
		jqka.WithRateLimit(cfg.JQKA.RateLimit),
	)

	rt.svc = spidersvc.NewService(jqkaClient, reference, fetchLogRepo)
	return rt, nil
}

// withService runs fn against a freshly wired service
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *spidersvc.Service) (interface{}, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	result, err := fn(ctx, rt.svc)
	if err != nil {
		log.Debug().Err(err).Str("command", cmd.Name()).Msg("Command failed")
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !compactOut {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
