package recipe

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/yigitd/slipway/internal/core/domain"
)

// nativeBuildDeps maps manifest packages known to compile native extensions
// to the OS packages their build needs. These are installed before the
// dependency install layer; installing them later fails the pip build with
// a missing-toolchain error.
var nativeBuildDeps = map[string][]string{
	"pdf2image":   {"poppler-utils"},
	"weasyprint":  {"libpango-1.0-0", "libpangocairo-1.0-0"},
	"psycopg2":    {"gcc", "libpq-dev"},
	"mysqlclient": {"default-libmysqlclient-dev", "gcc"},
	"pillow":      {"libjpeg-dev", "zlib1g-dev"},
	"lxml":        {"libxml2-dev", "libxslt1-dev"},
	"uwsgi":       {"gcc", "libc6-dev"},
}

var constraintOps = []string{"===", "==", ">=", "<=", "~=", "!=", ">", "<"}

// ParseManifest reads a pip requirements manifest into (name, constraint)
// pairs. Comment and option lines are skipped; extras and environment
// markers are tolerated but not interpreted.
func ParseManifest(r io.Reader) ([]domain.Requirement, error) {
	var reqs []domain.Requirement
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if i := strings.Index(line, ";"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		name, constraint := line, ""
		for _, op := range constraintOps {
			if i := strings.Index(line, op); i >= 0 {
				name = strings.TrimSpace(line[:i])
				constraint = strings.TrimSpace(line[i:])
				break
			}
		}
		if i := strings.Index(name, "["); i >= 0 {
			name = name[:i]
		}
		if name == "" {
			return nil, fmt.Errorf("invalid requirement line %q", s.Text())
		}
		reqs = append(reqs, domain.Requirement{Name: name, Constraint: constraint})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan manifest: %w", err)
	}
	return reqs, nil
}

// LoadManifest reads the manifest file. A missing manifest is a violation
// of the build input contract and aborts the build.
func LoadManifest(path string) ([]domain.Requirement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dependency manifest missing: %w", err)
	}
	defer f.Close()
	return ParseManifest(f)
}

// SystemPackages returns the sorted set of OS packages the build needs
// before installing dependencies: the recipe's own list plus the ones the
// manifest's native-extension packages require.
func SystemPackages(r *domain.Recipe, reqs []domain.Requirement) []string {
	set := make(map[string]bool)
	for _, p := range r.SystemPackages {
		set[p] = true
	}
	for _, req := range reqs {
		for _, p := range nativeBuildDeps[strings.ToLower(req.Name)] {
			set[p] = true
		}
	}
	pkgs := make([]string, 0, len(set))
	for p := range set {
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)
	return pkgs
}
