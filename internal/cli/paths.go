package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var pathsJSON bool

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the extension paths the notebook host discovers",
	Long: `Print one entry per bundled extension: its build output location relative to
the Python package (src) and its install name under the shared extensions
directory (dest). --json prints the payload exactly as the host reads it.`,
	RunE: runPaths,
}

func init() {
	pathsCmd.Flags().BoolVar(&pathsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(pathsCmd)
}

func runPaths(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	if pathsJSON {
		data, err := p.registry.PathsJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SRC\tDEST")
	for _, e := range p.registry.Entries() {
		fmt.Fprintf(w, "%s\t%s\n", e.Src, e.Dest)
	}
	return w.Flush()
}
