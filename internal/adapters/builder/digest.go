package builder

import (
	"encoding/json"
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/yigitd/slipway/internal/core/domain"
)

// buildIdentity is what the image tag digest is computed over: the recipe
// and the resolved manifest. Two builds with the same identity produce the
// same tag, so unchanged inputs reuse the image like a cache hit.
type buildIdentity struct {
	Recipe   *domain.Recipe       `json:"recipe"`
	Manifest []domain.Requirement `json:"manifest"`
}

func imageTag(r *domain.Recipe, reqs []domain.Requirement) (string, error) {
	bs, err := json.Marshal(buildIdentity{Recipe: r, Manifest: reqs})
	if err != nil {
		return "", fmt.Errorf("failed to marshal build identity: %w", err)
	}
	return fmt.Sprintf("%s:%s", r.Name, digest.FromBytes(bs).Encoded()[:12]), nil
}
