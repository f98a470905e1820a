// Package plan implements the pgdelta plan command.
package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgdelta/pgdelta"
	"github.com/pgdelta/pgdelta/internal/logger"
	"github.com/pgdelta/pgdelta/internal/render"
)

var (
	mainDSN     string
	branchDSN   string
	outputJSON  bool
	outputFile  string
	showSecrets bool
	keywordCase string
)

var PlanCmd = &cobra.Command{
	Use:          "plan",
	Short:        "Diff two databases and print the migration script",
	Long:         "Snapshot the main and branch databases, diff their schema state, and print the ordered DDL script that transforms main into branch.",
	RunE:         runPlan,
	SilenceUsage: true,
	PreRunE:      applyEnvVars,
}

func init() {
	PlanCmd.Flags().StringVar(&mainDSN, "main", "", "Main database DSN (required) (env: PGDELTA_MAIN_DSN)")
	PlanCmd.Flags().StringVar(&branchDSN, "branch", "", "Branch database DSN (required) (env: PGDELTA_BRANCH_DSN)")
	PlanCmd.Flags().BoolVar(&outputJSON, "json", false, "Print ordered steps as JSON instead of SQL")
	PlanCmd.Flags().StringVar(&outputFile, "output", "", "Write output to a file instead of stdout")
	PlanCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Do not mask passwords and connection strings in the output")
	PlanCmd.Flags().StringVar(&keywordCase, "keyword-case", "upper", "SQL keyword case: upper or lower")
}

// applyEnvVars fills unset connection flags from the environment, so CI
// setups can avoid DSNs on the command line.
func applyEnvVars(cmd *cobra.Command, args []string) error {
	if mainDSN == "" {
		mainDSN = os.Getenv("PGDELTA_MAIN_DSN")
	}
	if branchDSN == "" {
		branchDSN = os.Getenv("PGDELTA_BRANCH_DSN")
	}
	if mainDSN == "" {
		return fmt.Errorf("main database DSN is required (--main or PGDELTA_MAIN_DSN)")
	}
	if branchDSN == "" {
		return fmt.Errorf("branch database DSN is required (--branch or PGDELTA_BRANCH_DSN)")
	}
	return nil
}

func renderOptions() (render.Options, error) {
	opts := render.DefaultOptions()
	switch keywordCase {
	case "upper":
		opts.KeywordCase = render.KeywordCaseUpper
	case "lower":
		opts.KeywordCase = render.KeywordCaseLower
	default:
		return opts, fmt.Errorf("invalid keyword case %q: must be upper or lower", keywordCase)
	}
	return opts, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	opts, err := renderOptions()
	if err != nil {
		return err
	}

	start := time.Now()
	p, err := pgdelta.PlanDatabases(cmd.Context(), mainDSN, branchDSN)
	if err != nil {
		return err
	}
	logger.Get().Debug("plan computed",
		"changes", len(p.Changes),
		"elapsed", time.Since(start).Round(time.Millisecond))

	var hooks *pgdelta.Hooks
	if !showSecrets {
		hooks = pgdelta.MaskSecrets()
	}

	var out string
	if outputJSON {
		steps, err := p.Steps(opts, hooks)
		if err != nil {
			return err
		}
		encoded, err := json.MarshalIndent(steps, "", "  ")
		if err != nil {
			return err
		}
		out = string(encoded) + "\n"
	} else {
		out, err = p.Script(opts, hooks)
		if err != nil {
			return err
		}
	}

	if outputFile != "" {
		return os.WriteFile(outputFile, []byte(out), 0o644)
	}
	fmt.Print(out)
	return nil
}
