package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigitd/slipway/internal/core/domain"
)

func TestParseManifest(t *testing.T) {
	in := `
# web stack
fastapi==0.110.0
uvicorn[standard]>=0.27
fpdf2
python-docx~=1.1  # document generation
httpx; python_version >= "3.9"
-r extra.txt
`
	reqs, err := ParseManifest(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []domain.Requirement{
		{Name: "fastapi", Constraint: "==0.110.0"},
		{Name: "uvicorn", Constraint: ">=0.27"},
		{Name: "fpdf2"},
		{Name: "python-docx", Constraint: "~=1.1"},
		{Name: "httpx"},
	}, reqs)
}

func TestParseManifestRejectsBareConstraint(t *testing.T) {
	_, err := ParseManifest(strings.NewReader("==1.0\n"))
	assert.Error(t, err)
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(t.TempDir() + "/requirements.txt")
	assert.Error(t, err, "a missing manifest violates the build input contract")
}

func TestSystemPackages(t *testing.T) {
	r := &domain.Recipe{SystemPackages: []string{"fontconfig"}}
	reqs := []domain.Requirement{
		{Name: "fastapi"},
		{Name: "pdf2image"},
		{Name: "Psycopg2", Constraint: "==2.9"},
	}

	got := SystemPackages(r, reqs)

	assert.Equal(t, []string{"fontconfig", "gcc", "libpq-dev", "poppler-utils"}, got)
}

func TestSystemPackagesEmpty(t *testing.T) {
	got := SystemPackages(&domain.Recipe{}, []domain.Requirement{{Name: "fastapi"}})
	assert.Empty(t, got, "pure-python manifests need no toolchain layer")
}
