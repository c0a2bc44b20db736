package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jupyterlab/labpack/internal/manifest"
	"github.com/spf13/cobra"
)

var descriptorForce bool

var descriptorCmd = &cobra.Command{
	Use:   "install-descriptor",
	Short: "Write the shared install.json at the project root",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}

		path := filepath.Join(p.layout.ProjectRoot, manifest.InstallFile)
		if _, err := os.Stat(path); err == nil && !descriptorForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := manifest.WriteInstall(path, manifest.NewInstallDescriptor(p.settings.PackageName)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	descriptorCmd.Flags().BoolVar(&descriptorForce, "force", false, "Overwrite an existing install.json")
	rootCmd.AddCommand(descriptorCmd)
}
