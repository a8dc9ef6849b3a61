// Package dockerfile renders a build recipe into Dockerfile text.
//
// The rendered file is a strictly linear pipeline. Its ordering carries the
// contracts of the build: OS toolchains before the dependency install, the
// dependency manifest copied before the source tree (so the install layer
// caches across source edits), ownership transfer after every copy, and the
// privilege drop before the entry point.
package dockerfile

import (
	"fmt"
	"path"
	"strings"

	"github.com/yigitd/slipway/internal/core/domain"
)

// Generate renders the recipe. systemPackages is the merged OS package set
// derived from the manifest plus the recipe's own list.
func Generate(r *domain.Recipe, systemPackages []string) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "FROM python:%s-slim\n\n", r.PythonVersion)

	// No bytecode cache writes, no buffered stdio: logs must surface
	// immediately in the platform's log collector.
	b.WriteString("ENV PYTHONDONTWRITEBYTECODE=1 \\\n    PYTHONUNBUFFERED=1\n\n")

	b.WriteString("WORKDIR /app\n\n")

	if len(systemPackages) > 0 {
		fmt.Fprintf(&b, "RUN apt-get update \\\n    && apt-get install -y --no-install-recommends %s \\\n    && rm -rf /var/lib/apt/lists/*\n\n",
			strings.Join(systemPackages, " "))
	}

	fmt.Fprintf(&b, "RUN groupadd --gid %d %s \\\n    && useradd --uid %d --gid %s --home-dir /app --no-create-home %s\n\n",
		r.UID, r.User, r.UID, r.User, r.User)

	fmt.Fprintf(&b, "COPY %s ./\nRUN pip install --no-cache-dir -r %s\n\n",
		r.Manifest, path.Base(r.Manifest))

	if err := writeSource(&b, r); err != nil {
		return "", err
	}
	for _, a := range r.Assets {
		dir := cleanDir(a)
		fmt.Fprintf(&b, "COPY %s/ ./%s/\n", dir, dir)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "RUN chown -R %s:%s /app\n\n", r.User, r.User)
	fmt.Fprintf(&b, "USER %s\n\n", r.User)

	if r.Strategy == domain.StrategyWorkdir {
		fmt.Fprintf(&b, "WORKDIR /app/%s\n\n", cleanDir(r.SourceDir))
	}

	fmt.Fprintf(&b, "EXPOSE %d\n\n", r.Port)
	fmt.Fprintf(&b, "CMD [\"sh\", \"-c\", \"%s\"]\n", EntryCommand(r))

	return b.String(), nil
}

// writeSource emits the source copy steps for the active resolution
// strategy. This is the only place the strategies diverge.
func writeSource(b *strings.Builder, r *domain.Recipe) error {
	src := cleanDir(r.SourceDir)
	switch r.Strategy {
	case domain.StrategyFlatten:
		if src == "." {
			b.WriteString("COPY . ./\n")
		} else {
			fmt.Fprintf(b, "COPY %s/ ./\n", src)
		}
	case domain.StrategyPythonPath:
		copySubdir(b, src)
		b.WriteString("ENV PYTHONPATH=/app\n")
	case domain.StrategyWorkdir:
		copySubdir(b, src)
	case domain.StrategyPackage:
		fmt.Fprintf(b, "COPY %s ./\n", r.Packaging)
		copySubdir(b, src)
		// Dependencies are already installed from the manifest layer;
		// --no-deps keeps that layer authoritative.
		b.WriteString("RUN pip install --no-cache-dir --no-deps .\n")
	default:
		return fmt.Errorf("unknown resolution strategy %q", r.Strategy)
	}
	return nil
}

func copySubdir(b *strings.Builder, src string) {
	if src == "." {
		b.WriteString("COPY . ./\n")
		return
	}
	fmt.Fprintf(b, "COPY %s/ ./%s/\n", src, src)
}

// EntryCommand is the process entry point: the ASGI server bound to all
// interfaces. The declared port is only the fallback; a platform-injected
// PORT takes precedence.
func EntryCommand(r *domain.Recipe) string {
	return fmt.Sprintf("uvicorn %s --host 0.0.0.0 --port ${PORT:-%d}", r.App, r.Port)
}

func cleanDir(dir string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(dir, "\\", "/")), "./")
}
