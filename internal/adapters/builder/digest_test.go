package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigitd/slipway/internal/core/domain"
	"github.com/yigitd/slipway/internal/core/recipe"
)

func identityRecipe(t *testing.T) *domain.Recipe {
	t.Helper()
	r := &domain.Recipe{Name: "demo"}
	recipe.ApplyDefaults(r)
	require.NoError(t, recipe.Validate(r))
	return r
}

func TestImageTagStable(t *testing.T) {
	reqs := []domain.Requirement{{Name: "fastapi"}, {Name: "uvicorn", Constraint: ">=0.27"}}

	a, err := imageTag(identityRecipe(t), reqs)
	require.NoError(t, err)
	b, err := imageTag(identityRecipe(t), reqs)
	require.NoError(t, err)

	assert.Equal(t, a, b, "unchanged inputs must map to the same image tag")
	assert.Regexp(t, `^demo:[0-9a-f]{12}$`, a)
}

func TestImageTagSensitiveToInputs(t *testing.T) {
	reqs := []domain.Requirement{{Name: "fastapi"}}

	base, err := imageTag(identityRecipe(t), reqs)
	require.NoError(t, err)

	bumped, err := imageTag(identityRecipe(t), []domain.Requirement{{Name: "fastapi", Constraint: "==0.110.0"}})
	require.NoError(t, err)
	assert.NotEqual(t, base, bumped, "manifest change must change the tag")

	r := identityRecipe(t)
	r.Port = 9000
	retagged, err := imageTag(r, reqs)
	require.NoError(t, err)
	assert.NotEqual(t, base, retagged, "recipe change must change the tag")
}
