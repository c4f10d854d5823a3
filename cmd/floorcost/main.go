// FloorCost CLI - flooring estimate pricing
//
// Usage:
//
//	floorcost estimate --input request.json [options]
//	floorcost validate --input request.json
//	floorcost tiers
//	floorcost serve --port 8080
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"flooring-cost/api"
	"flooring-cost/decision/estimation"
	"flooring-cost/decision/pricing"
	"flooring-cost/decision/review"
	"flooring-cost/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "floorcost",
		Usage:   "Price hardwood flooring estimates",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"FLOORCOST_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   defaultLogFormat(),
				Usage:   "Log format (json, console)",
				EnvVars: []string{"FLOORCOST_LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Path to a YAML pricing catalog (default: built-in tiers)",
				EnvVars: []string{"FLOORCOST_CATALOG"},
			},
		},

		Before: func(c *cli.Context) error {
			platform.InitLogger(c.String("log-level"), c.String("log-format"))
			return nil
		},

		Commands: []*cli.Command{
			estimateCommand(),
			validateCommand(),
			tiersCommand(),
			serveCommand(),
		},
	}
}

// defaultLogFormat picks the console writer for development environments.
func defaultLogFormat() string {
	if platform.GetEnv("ENV", "production") == "development" {
		return "console"
	}
	return "json"
}

// =============================================================================
// ESTIMATE COMMAND
// =============================================================================

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Price an estimate request",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to an estimate request (.json, .yaml)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json, markdown)",
			},
			&cli.Float64Flag{
				Name:  "quote-limit",
				Usage: "Deny quotes above this total",
			},
			&cli.BoolFlag{
				Name:  "skip-validation",
				Value: false,
				Usage: "Price rooms without checking their dimensions",
			},
		},
		Action: runEstimate,
	}
}

func runEstimate(c *cli.Context) error {
	req, err := readRequest(c.String("input"))
	if err != nil {
		return err
	}

	if !c.Bool("skip-validation") {
		if res := estimation.ValidateEstimate(req.Rooms, req.Dimensions); !res.IsValid {
			return res.Err()
		}
	}

	catalog, err := loadCatalog(c.String("catalog"))
	if err != nil {
		return err
	}

	cfg, err := catalog.ConfigFor(*req)
	if err != nil {
		return fmt.Errorf("failed to resolve pricing: %w", err)
	}

	est := estimation.CalculateEstimateItems(req.Rooms, req.Dimensions, cfg, req.MaterialType, req.MaterialGrade, req.AIRecommendation)

	reviewReq := review.Request{Estimate: est, AIRecommendation: req.AIRecommendation}
	if c.IsSet("quote-limit") {
		reviewReq.CustomPolicies = append(reviewReq.CustomPolicies, review.QuoteLimitPolicy(c.Float64("quote-limit")))
	}
	reviewResult := review.NewEngine().Evaluate(reviewReq)

	log.Debug().
		Int("rooms", len(req.Rooms)).
		Float64("total", est.Total).
		Str("decision", string(reviewResult.Decision)).
		Msg("estimate priced")

	out := c.App.Writer
	switch c.String("format") {
	case "json":
		err = outputJSON(out, est, cfg, reviewResult)
	case "markdown":
		err = outputMarkdown(out, est, reviewResult)
	default:
		err = outputTable(out, est, reviewResult)
	}
	if err != nil {
		return err
	}

	if reviewResult.Decision == review.DecisionDeny {
		return cli.Exit("quote denied by review", 2)
	}
	return nil
}

// =============================================================================
// VALIDATE COMMAND
// =============================================================================

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check room dimensions in an estimate request",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to an estimate request (.json, .yaml)",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			req, err := readRequest(c.String("input"))
			if err != nil {
				return err
			}
			res := estimation.ValidateEstimate(req.Rooms, req.Dimensions)
			if !res.IsValid {
				return cli.Exit(res.Error, 1)
			}
			fmt.Fprintf(c.App.Writer, "✅ %d room(s) OK\n", len(req.Rooms))
			return nil
		},
	}
}

// =============================================================================
// TIERS COMMAND
// =============================================================================

func tiersCommand() *cli.Command {
	return &cli.Command{
		Name:  "tiers",
		Usage: "List pricing tiers and hardwood species",
		Action: func(c *cli.Context) error {
			catalog, err := loadCatalog(c.String("catalog"))
			if err != nil {
				return err
			}
			return outputCatalog(c.App.Writer, catalog)
		},
	}
}

// =============================================================================
// SERVE COMMAND (API SERVER)
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the estimate API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   platform.GetEnvInt("PORT", 8080),
				Usage:   "API server port",
				EnvVars: []string{"FLOORCOST_PORT"},
			},
			&cli.DurationFlag{
				Name:  "request-timeout",
				Value: platform.GetEnvDuration("FLOORCOST_REQUEST_TIMEOUT", api.DefaultConfig().RequestTimeout),
				Usage: "Per-request timeout",
			},
		},
		Action: func(c *cli.Context) error {
			catalog, err := loadCatalog(c.String("catalog"))
			if err != nil {
				return err
			}

			cfg := api.DefaultConfig()
			cfg.Port = c.Int("port")
			cfg.RequestTimeout = c.Duration("request-timeout")

			api.Version = version
			return api.NewServer(catalog, cfg, log.Logger).StartWithGracefulShutdown()
		},
	}
}

// =============================================================================
// INPUT
// =============================================================================

func readRequest(path string) (*estimation.EstimateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}

	var req estimation.EstimateRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse request %s: %w", path, err)
	}
	return &req, nil
}

func loadCatalog(path string) (*pricing.Catalog, error) {
	if path == "" {
		return pricing.DefaultCatalog(), nil
	}
	catalog, err := pricing.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("tiers", len(catalog.Tiers)).Msg("loaded pricing catalog")
	return catalog, nil
}
