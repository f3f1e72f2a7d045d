package main

import (
	"github.com/rhacs-labs/acs-ops/internal/sequence"
	"github.com/spf13/cobra"
)

var installManifests string

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install RHACS and reconcile it towards the desired state",
	Long: `Install reconciles the full RHACS stack: namespace, operator
subscription, Central services, the central route, and the secured
cluster services. Already-satisfied steps are skipped, so re-running
after a partial failure resumes where the previous run stopped.

Examples:
  # Install with defaults
  acs-ops install

  # Probe only, apply nothing
  acs-ops install --dry-run

  # Also reconcile extra manifests (yaml file, kustomize dir or helm chart)
  acs-ops install --manifests ./deploy/extras/`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		// Central may not exist yet on a fresh cluster
		deps, store, err := buildDeps(ctx, false)
		if err != nil {
			return err
		}

		steps := sequence.InstallSteps(deps)
		if installManifests != "" {
			extra, err := sequence.FromManifests(deps, installManifests)
			if err != nil {
				return err
			}
			steps = append(steps, extra...)
		}

		return runPipeline(ctx, "install", steps, deps, store)
	},
}

func init() {
	flags := installCmd.Flags()
	flags.StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	flags.BoolVar(&dryRun, "dry-run", false, "probe and report without applying anything")
	flags.StringVarP(&installManifests, "manifests", "m", "", "path to extra manifests to reconcile after the install")
}
