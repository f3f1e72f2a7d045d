package main

import (
	"github.com/rhacs-labs/acs-ops/internal/sequence"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a finished RHACS installation without changing it",
	Long: `Verify runs read-only checks against the cluster and Central: pods
running, route admitted, secured cluster registered, policies loaded,
and the scan configuration present. The exit code is the number of
failed checks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		deps, store, err := buildDeps(ctx, false)
		if err != nil {
			return err
		}

		steps, err := sequence.VerifySteps(ctx, deps)
		if err != nil {
			return err
		}
		return runPipeline(ctx, "verify", steps, deps, store)
	},
}

func init() {
	flags := verifyCmd.Flags()
	flags.StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
}
