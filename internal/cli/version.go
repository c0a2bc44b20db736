package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jupyterlab/labpack/internal/branding"
	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	Date           string `json:"date"`
	PackageName    string `json:"package_name"`
	PackageVersion string `json:"package_version"`
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print the labpack version only")
	versionCmd.Flags().Bool("json", false, "Print build and distribution info as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print labpack and distribution versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		short, _ := cmd.Flags().GetBool("short")
		asJSON, _ := cmd.Flags().GetBool("json")

		b := branding.Get()
		info := versionInfo{
			Version:        buildVersion,
			Commit:         buildCommit,
			Date:           buildDate,
			PackageName:    b.PackageName,
			PackageVersion: b.PackageVersion,
		}

		switch {
		case short:
			fmt.Fprintln(out, info.Version)
		case asJSON:
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding version info: %w", err)
			}
			fmt.Fprintln(out, string(data))
		default:
			fmt.Fprintf(out, "%s %s (commit %s, built %s)\n", b.CLIName, info.Version, info.Commit, info.Date)
			fmt.Fprintf(out, "packages %s %s (%s)\n", info.PackageName, info.PackageVersion, b.ProjectURL)
		}
		return nil
	},
}
