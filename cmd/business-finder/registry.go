package main

import (
	"fmt"
	"strconv"

	"business-finder/pkg/registry"

	ar "business-finder/internal/workers/business-search/aggregate-results"
	ec "business-finder/internal/workers/business-search/export-csv"
	fr "business-finder/internal/workers/business-search/filter-results"
	rl "business-finder/internal/workers/business-search/resolve-location"

	"github.com/spf13/cobra"
)

// workerTaskTypes are the job types served by cmd/worker-manager.
var workerTaskTypes = []string{rl.TaskType, ar.TaskType, fr.TaskType, ec.TaskType}

func newRegistryCmd(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Validate the activity registry and list its activities",
		Long: `registry loads the activity registry, validates it and checks that every
business search worker task type is declared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = a.cfg.Registry.Path
			}
			return runRegistry(cmd, path)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "registry file (default is registry.path from config)")
	return cmd
}

func runRegistry(cmd *cobra.Command, path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return err
	}

	table := newTable(cmd.OutOrStdout())
	table.Header([]string{"ID", "Task Type", "Timeout", "Retries", "Status"})
	rows := make([][]string, 0, len(reg.Activities))
	for _, act := range reg.Activities {
		rows = append(rows, []string{
			act.ID,
			act.TaskType,
			orDash(act.Timeout),
			strconv.Itoa(act.Retries),
			orDash(act.ImplementationStatus),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if missing := reg.Undeclared(workerTaskTypes); len(missing) > 0 {
		return fmt.Errorf("task types not declared in %s: %v", path, missing)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d activities, all %d worker task types declared\n", len(reg.Activities), len(workerTaskTypes))
	return nil
}
