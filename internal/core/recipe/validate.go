package recipe

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yigitd/slipway/internal/core/domain"
)

// ErrStrategyMismatch marks an app import path that is inconsistent with
// the chosen module-resolution strategy. Catching this at validation time
// turns what would be an import error at process start into a build-input
// rejection.
var ErrStrategyMismatch = errors.New("app import path inconsistent with resolution strategy")

var nameRE = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Validate checks a recipe after defaults were applied. Any error aborts
// the build before a Dockerfile is rendered.
func Validate(r *domain.Recipe) error {
	if !nameRE.MatchString(r.Name) {
		return fmt.Errorf("invalid recipe name %q", r.Name)
	}
	if r.Port < 1 || r.Port > 65535 {
		return fmt.Errorf("invalid port %d", r.Port)
	}
	if r.User == "" || r.User == "root" || r.UID <= 0 {
		return fmt.Errorf("runtime identity must be non-root, got user %q uid %d", r.User, r.UID)
	}

	module, attr, ok := strings.Cut(r.App, ":")
	if !ok || module == "" || attr == "" {
		return fmt.Errorf("app %q must have the form module:attribute", r.App)
	}

	switch r.Strategy {
	case domain.StrategyFlatten, domain.StrategyWorkdir:
		// The entry module sits directly in the working directory, so a
		// dotted path cannot resolve.
		if strings.Contains(module, ".") {
			return fmt.Errorf("%w: strategy %q needs a top-level module, got %q",
				ErrStrategyMismatch, r.Strategy, module)
		}
	case domain.StrategyPythonPath:
		pkg := sourcePackage(r.SourceDir)
		if pkg != "" && module != pkg && !strings.HasPrefix(module, pkg+".") {
			return fmt.Errorf("%w: PYTHONPATH points at the working root, so %q must resolve under %q",
				ErrStrategyMismatch, module, pkg)
		}
	case domain.StrategyPackage:
		if r.Packaging == "" {
			return fmt.Errorf("%w: package strategy needs a packaging descriptor", ErrStrategyMismatch)
		}
	default:
		return fmt.Errorf("unknown resolution strategy %q", r.Strategy)
	}
	return nil
}
