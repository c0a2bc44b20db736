package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/jupyterlab/labpack/internal/packaging"
	"github.com/spf13/cobra"
)

var specsJSON bool

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Print the data file specs, package data and build targets",
	RunE:  runSpecs,
}

func init() {
	specsCmd.Flags().BoolVar(&specsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(specsCmd)
}

type specsOutput struct {
	Mode        string                   `json:"mode"`
	DataFiles   []packaging.DataFileSpec `json:"data_files"`
	PackageData []packaging.DataFileSpec `json:"package_data"`
	Targets     []packaging.BuildTarget  `json:"build_targets"`
}

func runSpecs(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	out := specsOutput{
		Mode:        p.mode.String(),
		DataFiles:   p.specs(),
		PackageData: p.packageData(),
		Targets:     p.targets(),
	}

	if specsJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	root := p.layout.ProjectRoot
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TARGET DIR\tSOURCE\tPATTERN")
	for _, s := range append(out.DataFiles, out.PackageData...) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.TargetDir, relTo(root, s.SourceDir), s.Pattern)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXTENSION\tBUILD TARGET")
	for _, t := range out.Targets {
		fmt.Fprintf(w, "%s\t%s\n", t.Extension, relTo(root, t.Path))
	}
	return w.Flush()
}

// relTo shortens p relative to root for display.
func relTo(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return rel
}
