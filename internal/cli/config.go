package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/jupyterlab/labpack/internal/branding"
	"github.com/jupyterlab/labpack/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage project settings",
	Long:  `Read and write settings stored in labpack.yaml at the project root.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(projectDir)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		key, value := args[0], args[1]
		if err := config.Set(root, configFile, key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(projectDir)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		v, err := config.New(root, configFile)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v.GetString(args[0]))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List effective settings and their environment overrides",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(projectDir)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		v, err := config.New(root, configFile)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE\tENV")
		for _, key := range config.Keys() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", key, v.GetString(key), branding.EnvVar(key))
		}
		return w.Flush()
	},
}
