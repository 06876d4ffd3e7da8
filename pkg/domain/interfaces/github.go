package interfaces

import (
	"context"

	"github.com/m-mizutani/slipway/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// DownloadZipball downloads the source code zipball for a specific commit
	DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error)
}

// TokenVerifier validates a GitHub Actions OIDC ID token and returns the
// claims the dispatch surface needs.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (*model.ActionsClaims, error)
}
