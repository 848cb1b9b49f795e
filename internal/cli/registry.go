package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	sja "fractional-quest/internal/workers/communication/send-job-alert"
	qe "fractional-quest/internal/workers/data-access/query-elasticsearch"
	qp "fractional-quest/internal/workers/data-access/query-postgresql"
	pjf "fractional-quest/internal/workers/jobs/parse-job-filters"
	sj "fractional-quest/internal/workers/jobs/sync-jobs"
	"fractional-quest/pkg/registry"
)

// WorkerTaskTypes are the task types the worker manager registers.
var WorkerTaskTypes = []string{pjf.TaskType, qp.TaskType, qe.TaskType, sj.TaskType, sja.TaskType}

// now is replaced in tests.
var now = time.Now

func newRegistryCmd(opts *options) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and maintain the worker activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", registry.DefaultPath, "Path to the registry file")

	cmd.AddCommand(newRegistryListCmd(opts, &path))
	cmd.AddCommand(newRegistryValidateCmd(&path))
	cmd.AddCommand(newRegistryAddCmd(&path))
	cmd.AddCommand(newRegistryUpdateCmd(&path))
	return cmd
}

func newRegistryListCmd(opts *options, path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), reg.Activities)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tCATEGORY\tSTATUS\tTIMEOUT\tRETRIES\tERROR CODES")
			for _, a := range reg.Activities {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries, strings.Join(a.ErrorCodes, ","))
			}
			return w.Flush()
		},
	}
}

func newRegistryValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry and check every worker task type is documented",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			if missing := reg.Missing(WorkerTaskTypes); len(missing) > 0 {
				return fmt.Errorf("registry validation failed: no activity for %s", strings.Join(missing, ", "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}
}

func newRegistryAddCmd(path *string) *cobra.Command {
	var a registry.Activity

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity to the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.ID == "" || a.DisplayName == "" || a.Category == "" {
				return fmt.Errorf("--id, --display-name and --category are required")
			}
			if a.TaskType == "" {
				a.TaskType = a.ID
			}
			a.InputSchema = map[string]interface{}{}
			a.OutputSchema = map[string]interface{}{}
			a.ErrorCodes = []string{}
			a.Workflows = []string{}
			a.Tags = []string{}

			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				reg = registry.New(now())
			}
			if err := reg.Add(a, now()); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&a.ID, "id", "", "Activity ID, e.g. send-job-alert")
	cmd.Flags().StringVar(&a.DisplayName, "display-name", "", "Display name")
	cmd.Flags().StringVar(&a.Description, "description", "", "Description")
	cmd.Flags().StringVar(&a.Category, "category", "", "Category, e.g. jobs")
	cmd.Flags().StringVar(&a.TaskType, "task-type", "", "Zeebe task type (default: the ID)")
	cmd.Flags().StringVar(&a.Version, "version", "1.0.0", "Version")
	cmd.Flags().StringVar(&a.ImplementationStatus, "status", registry.StatusPlanned,
		"Implementation status: planned, in-progress, completed or verified")
	cmd.Flags().StringVar(&a.Timeout, "timeout", "10s", "Job timeout")
	cmd.Flags().IntVar(&a.Retries, "retries", 0, "Retry budget")
	return cmd
}

func newRegistryUpdateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <field> <value>",
		Short: "Update one field of an activity",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(args[0], args[1], args[2], now()); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", args[0], args[1], args[2])
			return nil
		},
	}
}
