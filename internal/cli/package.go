package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jupyterlab/labpack/internal/archive"
	"github.com/jupyterlab/labpack/internal/packaging"
	"github.com/jupyterlab/labpack/internal/stage"
	"github.com/spf13/cobra"
)

var (
	packageNoArchive    bool
	packageForceInstall bool
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Build, stage and archive the distribution",
	Long: `Run the packaging graph:

  jsdeps      build the extensions if needed (see 'build')
  data_files  copy each extension and install.json into
              <prefix>/share/jupyter/labextensions/<name>/, and the
              Python package into <prefix>/site-packages/<module>/
  archive     write <out>/<package>-<version>.tar.xz from the files
              staged by this run

Files staged by a previous run into the same prefix are removed first.
A build failure aborts the run before anything is staged.`,
	RunE: runPackage,
}

func init() {
	packageCmd.Flags().String("mode", "auto", "Build mode: auto, working-copy or release")
	packageCmd.Flags().String("package-manager", "jlpm", "Package manager: jlpm, yarn or npm")
	packageCmd.Flags().String("prefix", "", "Staging prefix (default <project>/build/stage)")
	packageCmd.Flags().String("out", "", "Archive output directory (default <project>/dist)")
	packageCmd.Flags().BoolVar(&packageNoArchive, "no-archive", false, "Stage data files without writing the archive")
	packageCmd.Flags().BoolVar(&packageForceInstall, "force-install", false, "Install JavaScript dependencies even when node_modules is current")
	rootCmd.AddCommand(packageCmd)
}

func runPackage(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	s := p.settings

	build := packaging.NewBuildStep(p.mode, p.targets(), newBuilder(cmd, p, packageForceInstall))
	var staged stage.Record
	graph, err := packaging.AssemblePackageCommand(p.staged(), build, stage.Installer(s.Prefix, &staged))
	if err != nil {
		return err
	}

	var archivePath string
	if !packageNoArchive {
		name, err := archive.FileName(s.PackageName, s.Version)
		if err != nil {
			return err
		}
		archivePath = filepath.Join(s.OutDir, name)
		if err := graph.Add(archive.Step(archivePath, s.Prefix, strings.TrimSuffix(name, archive.Ext), func() []string { return staged })); err != nil {
			return err
		}
	}

	if err := graph.Run(cmd.Context(), logger); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Staged %d extensions in %s\n", p.registry.Len(), filepath.Join(s.Prefix, filepath.FromSlash(packaging.ShareDir)))
	if archivePath != "" {
		fmt.Fprintf(out, "✓ Wrote %s\n", archivePath)
	}
	return nil
}
