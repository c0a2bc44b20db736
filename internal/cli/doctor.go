package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jupyterlab/labpack/internal/manifest"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that build output matches the extension list",
	Long: `Verify the project before packaging:

  - install.json exists at the project root, is a valid install descriptor
    and names the configured distribution
  - every listed extension has a prebuilt package.json whose name matches
    the list and whose version is valid semver
  - no built extension exists that the list does not name
  - the configured package manager is on PATH (warning only)`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// report collects check results and prints them with status marks.
type report struct {
	w        io.Writer
	ok       *color.Color
	bad      *color.Color
	warn     *color.Color
	problems int
}

func newReport(w io.Writer) *report {
	return &report{
		w:    w,
		ok:   color.New(color.FgGreen),
		bad:  color.New(color.FgRed),
		warn: color.New(color.FgYellow),
	}
}

func (r *report) pass(format string, a ...any) {
	fmt.Fprintf(r.w, "  %s %s\n", r.ok.Sprint("✓"), fmt.Sprintf(format, a...))
}

func (r *report) fail(format string, a ...any) {
	r.problems++
	fmt.Fprintf(r.w, "  %s %s\n", r.bad.Sprint("✗"), fmt.Sprintf(format, a...))
}

func (r *report) warning(format string, a ...any) {
	fmt.Fprintf(r.w, "  %s %s\n", r.warn.Sprint("!"), fmt.Sprintf(format, a...))
}

func runDoctor(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	r := newReport(cmd.OutOrStdout())
	fmt.Fprintf(r.w, "Project: %s (%s mode)\n", p.layout.ProjectRoot, p.mode)

	fmt.Fprintln(r.w, "Install descriptor:")
	checkInstallDescriptor(r, filepath.Join(p.layout.ProjectRoot, manifest.InstallFile), p.settings.PackageName)

	fmt.Fprintln(r.w, "Extensions:")
	for _, t := range p.targets() {
		checkBuiltExtension(r, t.Extension, t.Path)
	}
	for _, name := range builtExtensions(p.layout.BuildRoot) {
		if !p.registry.Contains(name) {
			r.fail("%s is built but not in the extension list", name)
		}
	}

	fmt.Fprintln(r.w, "Toolchain:")
	if path, err := exec.LookPath(p.settings.PackageManager); err != nil {
		r.warning("%s not found on PATH (needed only when the build must run)", p.settings.PackageManager)
	} else {
		r.pass("%s: %s", p.settings.PackageManager, path)
	}

	if r.problems > 0 {
		return fmt.Errorf("doctor found %d problem(s)", r.problems)
	}
	fmt.Fprintln(r.w, "No problems found.")
	return nil
}

func checkInstallDescriptor(r *report, path, packageName string) {
	if _, err := os.Stat(path); err != nil {
		r.fail("%s missing (run 'install-descriptor')", manifest.InstallFile)
		return
	}
	result, err := manifest.ValidateInstallFile(path)
	if err != nil {
		r.fail("%s: %v", manifest.InstallFile, err)
		return
	}
	if !result.Valid {
		for _, issue := range result.Issues {
			r.fail("%s %s", manifest.InstallFile, issue)
		}
		return
	}
	d, err := manifest.ParseInstall(path)
	if err != nil {
		r.fail("%s: %v", manifest.InstallFile, err)
		return
	}
	if d.PackageName != packageName {
		r.fail("%s names package %q, want %q", manifest.InstallFile, d.PackageName, packageName)
		return
	}
	r.pass("%s (%s)", manifest.InstallFile, d.PackageName)
}

func checkBuiltExtension(r *report, name, target string) {
	if _, err := os.Stat(target); err != nil {
		r.fail("%s: not built (%s missing)", name, manifest.PackageFile)
		return
	}

	pkg, err := manifest.ParsePackage(target)
	if err != nil {
		r.fail("%s: %v", name, err)
		return
	}
	if !pkg.IsPrebuilt() {
		r.fail("%s: %s has no jupyterlab._build metadata, not a production build", name, manifest.PackageFile)
		return
	}
	if pkg.Name != name {
		r.fail("%s: built package is named %q", name, pkg.Name)
		return
	}

	result, err := manifest.ValidatePackageFile(target)
	if err != nil {
		r.fail("%s: %v", name, err)
		return
	}
	if !result.Valid {
		var msgs []string
		for _, issue := range result.Issues {
			msgs = append(msgs, issue.String())
		}
		r.fail("%s: invalid %s: %s", name, manifest.PackageFile, strings.Join(msgs, "; "))
		return
	}
	if err := manifest.CheckVersion(pkg.Version); err != nil {
		r.fail("%s: %v", name, err)
		return
	}
	r.pass("%s %s", name, pkg.Version)
}

// builtExtensions returns the names of extensions with a package.json under
// buildRoot, at <name>/ or <@scope>/<name>/.
func builtExtensions(buildRoot string) []string {
	var names []string
	entries, err := os.ReadDir(buildRoot)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if !strings.HasPrefix(e.Name(), "@") {
			if hasPackageFile(filepath.Join(buildRoot, e.Name())) {
				names = append(names, e.Name())
			}
			continue
		}
		scoped, err := os.ReadDir(filepath.Join(buildRoot, e.Name()))
		if err != nil {
			continue
		}
		for _, s := range scoped {
			if s.IsDir() && hasPackageFile(filepath.Join(buildRoot, e.Name(), s.Name())) {
				names = append(names, e.Name()+"/"+s.Name())
			}
		}
	}
	sort.Strings(names)
	return names
}

func hasPackageFile(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, manifest.PackageFile))
	return err == nil
}
