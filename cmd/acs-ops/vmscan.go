package main

import (
	"github.com/rhacs-labs/acs-ops/internal/sequence"
	"github.com/spf13/cobra"
)

var vmscanCmd = &cobra.Command{
	Use:   "vmscan",
	Short: "Enable virtual machine vulnerability scanning",
	Long: `Vmscan turns on the VM scanning feature flag on Central, issues the
vsock listener certificate, and creates a scan-target virtual machine to
exercise the scanner. The Central rollout triggered by the flag change is
waited for before the later steps run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		deps, store, err := buildDeps(ctx, false)
		if err != nil {
			return err
		}
		return runPipeline(ctx, "vmscan", sequence.VMScanSteps(deps), deps, store)
	},
}

func init() {
	flags := vmscanCmd.Flags()
	flags.StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	flags.BoolVar(&dryRun, "dry-run", false, "probe and report without applying anything")
}
