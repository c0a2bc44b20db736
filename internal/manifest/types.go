package manifest

// PackageDescriptor is the subset of a built extension's package.json that
// packaging relies on.
type PackageDescriptor struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description,omitempty"`
	License     string       `json:"license,omitempty"`
	JupyterLab  *LabMetadata `json:"jupyterlab,omitempty"`
}

// LabMetadata is the "jupyterlab" block of a package.json.
type LabMetadata struct {
	Extension     any            `json:"extension,omitempty"`
	MimeExtension any            `json:"mimeExtension,omitempty"`
	OutputDir     string         `json:"outputDir,omitempty"`
	Build         *BuildMetadata `json:"_build,omitempty"`
}

// BuildMetadata is written by the JupyterLab builder into the package.json of
// a prebuilt extension. Its presence marks a production build.
type BuildMetadata struct {
	Load          string `json:"load"`
	Extension     string `json:"extension,omitempty"`
	MimeExtension string `json:"mimeExtension,omitempty"`
	Style         string `json:"style,omitempty"`
}

// InstallDescriptor is the install.json placed next to each installed
// extension. The host uses it to tell users how the extension was installed.
type InstallDescriptor struct {
	PackageManager        string `json:"packageManager"`
	PackageName           string `json:"packageName"`
	UninstallInstructions string `json:"uninstallInstructions"`
}

// File names of the descriptors.
const (
	PackageFile = "package.json"
	InstallFile = "install.json"
)

// IsPrebuilt reports whether the descriptor carries build metadata.
func (p *PackageDescriptor) IsPrebuilt() bool {
	return p.JupyterLab != nil && p.JupyterLab.Build != nil && p.JupyterLab.Build.Load != ""
}
