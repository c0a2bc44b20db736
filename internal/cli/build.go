package cli

import (
	"fmt"

	"github.com/jupyterlab/labpack/internal/packaging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var buildForceInstall bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the bundled extensions if their build output is missing",
	Long: `Run the JavaScript dependency install and production build once if any
extension's package.json is missing, then verify every extension was built.

In release mode the build is skipped entirely when the prebuilt output is
already present. The default mode (auto) is working-copy when the project
root contains .git and release otherwise.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("mode", "auto", "Build mode: auto, working-copy or release")
	buildCmd.Flags().String("package-manager", "jlpm", "Package manager: jlpm, yarn or npm")
	buildCmd.Flags().BoolVar(&buildForceInstall, "force-install", false, "Install JavaScript dependencies even when node_modules is current")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	step := packaging.NewBuildStep(p.mode, p.targets(), newBuilder(cmd, p, buildForceInstall))
	logger.Debug("build step", zap.String("mode", p.mode.String()), zap.Int("extensions", p.registry.Len()))
	if err := step.Run(cmd.Context(), logger); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d extensions built (%s mode)\n", p.registry.Len(), p.mode)
	return nil
}
