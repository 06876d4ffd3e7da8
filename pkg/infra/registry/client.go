package registry

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/slipway/pkg/domain/interfaces"
	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// DefaultEndpoint is the production PyPI legacy upload API.
const DefaultEndpoint = "https://upload.pypi.org/legacy/"

// TokenUsername is the fixed username for API-token authentication.
const TokenUsername = "__token__"

type client struct {
	endpoint   string
	username   string
	token      string
	httpClient *http.Client
}

// Option configures New.
type Option func(*client)

// WithHTTPClient replaces the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a registry client for the legacy upload API. The token is
// held only for request authentication and never appears in errors or logs.
func New(endpoint, username, token string, opts ...Option) interfaces.RegistryClient {
	c := &client{
		endpoint: endpoint,
		username: username,
		token:    token,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends the artifact as one multipart file_upload request. The
// registry treats an existing version as a conflict; uploading is the only
// mutating call, so a failed request leaves no partial remote state.
func (c *client) Upload(ctx context.Context, artifact *model.Artifact) error {
	body, contentType, err := buildForm(artifact)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return goerr.Wrap(err, "failed to create upload request", goerr.T(types.ErrTagNetwork))
	}
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth(c.username, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to reach registry",
			goerr.T(types.ErrTagNetwork),
			goerr.V("endpoint", c.endpoint),
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	excerpt := readExcerpt(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return goerr.New("registry rejected credentials",
			goerr.T(types.ErrTagAuthentication),
			goerr.V("status", resp.StatusCode),
			goerr.V("file", artifact.FileName),
		)
	case resp.StatusCode == http.StatusConflict || isDuplicateMessage(resp.StatusCode, excerpt):
		return goerr.New("version already exists on registry",
			goerr.T(types.ErrTagDuplicateVersion),
			goerr.V("status", resp.StatusCode),
			goerr.V("name", artifact.Name),
			goerr.V("version", artifact.Version),
		)
	default:
		return goerr.New("registry upload failed",
			goerr.T(types.ErrTagNetwork),
			goerr.V("status", resp.StatusCode),
			goerr.V("response", excerpt),
		)
	}
}

// isDuplicateMessage detects PyPI's duplicate rejection, which arrives as
// 400 with a message naming the existing file rather than 409.
func isDuplicateMessage(status int, body string) bool {
	if status != http.StatusBadRequest {
		return false
	}
	lower := strings.ToLower(body)
	return strings.Contains(lower, "already exist") || strings.Contains(lower, "already been used")
}

func readExcerpt(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// buildForm assembles the multipart body of a file_upload request with the
// PKG-INFO metadata, digests and file content.
func buildForm(artifact *model.Artifact) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		":action":          "file_upload",
		"protocol_version": "1",
		"filetype":         "sdist",
		"pyversion":        "source",
		"name":             artifact.Name,
		"version":          artifact.Version,
		"metadata_version": artifact.Metadata.MetadataVersion,
		"summary":          artifact.Metadata.Summary,
		"description":      artifact.Metadata.Description,
		"home_page":        artifact.Metadata.HomePage,
		"author":           artifact.Metadata.Author,
		"author_email":     artifact.Metadata.AuthorEmail,
		"license":          artifact.Metadata.License,
		"requires_python":  artifact.Metadata.RequiresPython,
		"sha256_digest":    artifact.SHA256,
		"md5_digest":       artifact.MD5,
	}

	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(key, value); err != nil {
			return nil, "", goerr.Wrap(err, "failed to write form field", goerr.V("field", key))
		}
	}

	for _, classifier := range artifact.Metadata.Classifiers {
		if err := w.WriteField("classifiers", classifier); err != nil {
			return nil, "", goerr.Wrap(err, "failed to write classifier field")
		}
	}

	file, err := os.Open(artifact.Path)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to open artifact", goerr.V("path", artifact.Path))
	}
	defer file.Close()

	part, err := w.CreateFormFile("content", artifact.FileName)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to create file part")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", goerr.Wrap(err, "failed to copy artifact into request")
	}

	if err := w.Close(); err != nil {
		return nil, "", goerr.Wrap(err, "failed to finalize multipart body")
	}

	return &buf, w.FormDataContentType(), nil
}
