package main

import (
	"github.com/rhacs-labs/acs-ops/internal/sequence"
	"github.com/spf13/cobra"
)

var complianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Enable compliance scanning and schedule the catch-all scan",
	Long: `Compliance installs the Compliance Operator, binds the configured
profiles, replaces the scan configuration in Central, and triggers a
fresh compliance run. Requires a reachable Central with either an API
token or the admin password configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		deps, store, err := buildDeps(ctx, true)
		if err != nil {
			return err
		}

		steps, err := sequence.ComplianceSteps(ctx, deps)
		if err != nil {
			return err
		}
		return runPipeline(ctx, "compliance", steps, deps, store)
	},
}

func init() {
	flags := complianceCmd.Flags()
	flags.StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	flags.BoolVar(&dryRun, "dry-run", false, "probe and report without applying anything")
}
