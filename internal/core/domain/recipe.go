package domain

// Strategy selects how the ASGI application module is made importable
// inside the image. Exactly one strategy is active per recipe; the entry
// point command must stay consistent with it or the process fails at start
// with an import error.
type Strategy string

const (
	// StrategyFlatten copies the source files into the working root so the
	// entry module is importable by its bare name.
	StrategyFlatten Strategy = "flatten"
	// StrategyPythonPath keeps the source under its subdirectory and points
	// PYTHONPATH at the working root.
	StrategyPythonPath Strategy = "pythonpath"
	// StrategyWorkdir switches the working directory into the source
	// subdirectory before the entry point runs.
	StrategyWorkdir Strategy = "workdir"
	// StrategyPackage installs the source tree as a package so the
	// interpreter's own resolution finds it regardless of working directory
	// or path variables. Most robust; the default.
	StrategyPackage Strategy = "package"
)

// Recipe is the declarative build descriptor: everything needed to turn a
// Python ASGI source tree into a runnable, unprivileged image.
type Recipe struct {
	Name          string   `yaml:"name" json:"name"`
	PythonVersion string   `yaml:"python" json:"python"`
	Manifest      string   `yaml:"manifest" json:"manifest"`
	SourceDir     string   `yaml:"source_dir" json:"source_dir"`
	Packaging     string   `yaml:"packaging" json:"packaging"` // pyproject.toml etc., package strategy only
	App           string   `yaml:"app" json:"app"`             // import path of the ASGI object, "module:attr"
	Strategy      Strategy `yaml:"strategy" json:"strategy"`
	Port          int      `yaml:"port" json:"port"`
	User          string   `yaml:"user" json:"user"`
	UID           int      `yaml:"uid" json:"uid"`
	Assets        []string `yaml:"assets" json:"assets,omitempty"` // static asset dirs (fonts etc.)
	// SystemPackages are OS packages installed before the dependency
	// install layer, on top of the ones derived from the manifest.
	SystemPackages []string `yaml:"system_packages" json:"system_packages,omitempty"`
}

// Requirement is one entry of the dependency manifest.
type Requirement struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`
}
