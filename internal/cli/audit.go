package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dshills/tribunal/internal/adjudicate"
	"github.com/dshills/tribunal/internal/cache"
	"github.com/dshills/tribunal/internal/config"
	"github.com/dshills/tribunal/internal/evidence"
	"github.com/dshills/tribunal/internal/output"
	"github.com/dshills/tribunal/internal/probes"
	"github.com/dshills/tribunal/internal/providers"
	"github.com/dshills/tribunal/internal/reviewers"
	"github.com/dshills/tribunal/internal/rubric"
	"github.com/spf13/cobra"
)

// Shared audit flags
var (
	flagProvider     string
	flagModel        string
	flagFormat       string
	flagOut          string
	flagFailUnder    float64
	flagRubric       string
	flagDoc          string
	flagCloneTimeout int
	flagNoRedact     bool
	flagNoCache      bool
)

func addAuditFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (anthropic, openai, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, markdown, json)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().Float64Var(&flagFailUnder, "fail-under", 0, "Exit non-zero when the overall score is below this threshold")
	cmd.Flags().StringVar(&flagRubric, "rubric", "", "Rubric file path (YAML or JSON)")
	cmd.Flags().StringVar(&flagDoc, "doc", "", "Path to the subject's written report for document analysis")
	cmd.Flags().IntVar(&flagCloneTimeout, "clone-timeout", 0, "Clone timeout in seconds")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Disable the reviewer response cache")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailUnder > 0 {
		m["failUnder"] = fmt.Sprintf("%g", flagFailUnder)
	}
	if flagRubric != "" {
		m["rubricFile"] = flagRubric
	}
	if flagDoc != "" {
		m["doc"] = flagDoc
	}
	if flagCloneTimeout > 0 {
		m["cloneTimeout"] = fmt.Sprintf("%d", flagCloneTimeout)
	}
	return m
}

var auditCmd = &cobra.Command{
	Use:   "audit <repo-url>",
	Short: "Audit a repository and emit a scored report",
	Long:  "Audit clones the repository, collects forensic evidence, convenes the reviewer bench, and adjudicates the opinions into a final report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		runAudit(args[0], cfg)
		return nil
	},
}

func runAudit(repoURL string, cfg config.Config) {
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}

	rub, err := rubric.Load(cfg.RubricFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	ctx := context.Background()

	fmt.Fprintf(os.Stderr, "Collecting evidence from %s...\n", repoURL)
	store := evidence.NewStore()
	runner := probes.NewRunner(
		time.Duration(cfg.CloneTimeoutSeconds)*time.Second,
		probes.NewRepoInvestigator(),
		probes.NewDocAnalyst(),
	)
	runner.Run(ctx, repoURL, cfg.DocPath, store)

	// Completeness barrier: the bench never deliberates on a partial
	// forensic record.
	if err := store.Require(rub.RequiredEvidenceKeys()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	p, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitUsageError
		}
		return
	}

	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: cache unavailable: %v\n", err)
		c = nil
	}

	fmt.Fprintf(os.Stderr, "Convening the bench (%s/%s)...\n", cfg.Provider, cfg.Model)
	bench := reviewers.NewBench(p, cfg.Model, c)
	bench.Unredacted = !cfg.Privacy.RedactSecrets
	opinions := bench.Deliberate(ctx, rub, store)

	fmt.Fprintln(os.Stderr, "Adjudicating...")
	narrator := reviewers.NewNarrator(p, cfg.Narrative.MaxAttempts,
		time.Duration(cfg.Narrative.TimeoutSeconds)*time.Second)
	report := adjudicate.New(rub, narrator).Run(ctx, repoURL, opinions, store)

	if err := output.WriteReport(&report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if cfg.FailUnder > 0 && report.OverallScore < cfg.FailUnder {
		fmt.Fprintf(os.Stderr, "Overall score %.2f is below threshold %.2f\n",
			report.OverallScore, cfg.FailUnder)
		exitCode = ExitFindings
	}
}

func init() {
	addAuditFlags(auditCmd)
}
