package recipe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yigitd/slipway/internal/core/domain"
)

// DefaultFile is the recipe file looked up in the root of a source tree.
const DefaultFile = "slipway.yaml"

const (
	defaultPythonVersion = "3.11"
	defaultManifest      = "requirements.txt"
	defaultSourceDir     = "src"
	defaultPackaging     = "pyproject.toml"
	defaultPort          = 8080
	defaultUser          = "app"
	defaultUID           = 1000
)

// Load reads the recipe file from the root of a source tree. A missing
// file is not an error: the tree is then built with the default recipe.
// The name is left empty when the file does not set one; the caller knows
// where the tree came from and names it accordingly.
func Load(dir string) (*domain.Recipe, error) {
	r := &domain.Recipe{}
	data, err := os.ReadFile(filepath.Join(dir, DefaultFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	default:
		if err := yaml.Unmarshal(data, r); err != nil {
			return nil, fmt.Errorf("failed to parse recipe: %w", err)
		}
	}
	ApplyDefaults(r)
	return r, nil
}

// ApplyDefaults fills the zero-valued fields of a recipe. The app import
// path default follows the strategy: flattened and workdir layouts import
// the bare module name, the others import through the source package.
func ApplyDefaults(r *domain.Recipe) {
	if r.PythonVersion == "" {
		r.PythonVersion = defaultPythonVersion
	}
	if r.Manifest == "" {
		r.Manifest = defaultManifest
	}
	if r.SourceDir == "" {
		r.SourceDir = defaultSourceDir
	}
	if r.Strategy == "" {
		r.Strategy = domain.StrategyPackage
	}
	if r.Strategy == domain.StrategyPackage && r.Packaging == "" {
		r.Packaging = defaultPackaging
	}
	if r.App == "" {
		switch r.Strategy {
		case domain.StrategyFlatten, domain.StrategyWorkdir:
			r.App = "main:app"
		default:
			if pkg := sourcePackage(r.SourceDir); pkg == "" {
				r.App = "main:app"
			} else {
				r.App = pkg + ".main:app"
			}
		}
	}
	if r.Port == 0 {
		r.Port = defaultPort
	}
	if r.User == "" {
		r.User = defaultUser
	}
	if r.UID == 0 {
		r.UID = defaultUID
	}
}

// sourcePackage maps a source directory to the package name the
// interpreter resolves it as.
func sourcePackage(dir string) string {
	d := filepath.ToSlash(filepath.Clean(dir))
	if d == "." {
		return ""
	}
	return strings.ReplaceAll(d, "/", ".")
}
