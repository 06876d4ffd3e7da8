package github_test

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/m-mizutani/gt"

	githubinfra "github.com/m-mizutani/slipway/pkg/infra/github"
)

func TestClient_New(t *testing.T) {
	// This test requires GitHub App credentials from environment variables
	appID := os.Getenv("TEST_GITHUB_APP_ID")
	installationID := os.Getenv("TEST_GITHUB_INSTALLATION_ID")
	privateKey := os.Getenv("TEST_GITHUB_PRIVATE_KEY")

	if appID == "" || installationID == "" || privateKey == "" {
		t.Skip("Test GitHub App credentials not provided via environment variables")
	}

	// Parse string IDs to int64
	appIDInt, err := strconv.ParseInt(appID, 10, 64)
	gt.NoError(t, err)

	installationIDInt, err := strconv.ParseInt(installationID, 10, 64)
	gt.NoError(t, err)

	client, err := githubinfra.NewClient(appIDInt, installationIDInt, []byte(privateKey))
	gt.NoError(t, err)
	gt.Value(t, client).NotNil()
}

func TestClient_NewWithBadKey(t *testing.T) {
	_, err := githubinfra.NewClient(1234, 5678, []byte("not a PEM key"))
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to create GitHub App transport")
}

func TestClient_DownloadZipball_WithRealAPI(t *testing.T) {
	appID := os.Getenv("TEST_GITHUB_APP_ID")
	installationID := os.Getenv("TEST_GITHUB_INSTALLATION_ID")
	privateKey := os.Getenv("TEST_GITHUB_PRIVATE_KEY")
	repo := os.Getenv("TEST_GITHUB_REPO")
	ref := os.Getenv("TEST_GITHUB_REF")

	if appID == "" || installationID == "" || privateKey == "" || repo == "" || ref == "" {
		t.Skip("Test GitHub App credentials not provided")
	}

	appIDInt, err := strconv.ParseInt(appID, 10, 64)
	gt.NoError(t, err)

	installationIDInt, err := strconv.ParseInt(installationID, 10, 64)
	gt.NoError(t, err)

	client, err := githubinfra.NewClient(appIDInt, installationIDInt, []byte(privateKey))
	gt.NoError(t, err)

	owner, name, ok := splitRepo(repo)
	if !ok {
		t.Fatalf("TEST_GITHUB_REPO must be owner/name, got %q", repo)
	}

	data, err := client.DownloadZipball(context.Background(), owner, name, ref)
	gt.NoError(t, err)
	gt.Number(t, len(data)).Greater(0)

	// ZIP archives start with the PK magic bytes
	gt.Value(t, string(data[:2])).Equal("PK")
}

func splitRepo(repo string) (string, string, bool) {
	for i := 0; i < len(repo); i++ {
		if repo[i] == '/' {
			return repo[:i], repo[i+1:], i > 0 && i < len(repo)-1
		}
	}
	return "", "", false
}
