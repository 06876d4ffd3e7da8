package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// checkoutTree downloads the commit zipball and extracts it into a fresh
// working directory. Any failure here means the source is unavailable.
func (uc *publisher) checkoutTree(ctx context.Context, ev *model.TriggerEvent) (*model.Checkout, error) {
	logger := ctxlog.From(ctx)

	ref := ev.HeadSHA.String()
	if ref == "" {
		return nil, goerr.New("trigger event has no head SHA to check out",
			goerr.T(types.ErrTagSourceUnavailable))
	}

	zipData, err := uc.github.DownloadZipball(ctx, ev.Repository.Owner(), ev.Repository.Name(), ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download zipball",
			goerr.T(types.ErrTagSourceUnavailable),
			goerr.V("repository", ev.Repository),
			goerr.V("ref", ref),
		)
	}

	logger.Info("Downloaded zipball",
		"size_bytes", len(zipData),
		"repository", ev.Repository,
		"ref", ref,
	)

	checkout, err := uc.extractZip(ctx, zipData)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract zipball",
			goerr.T(types.ErrTagSourceUnavailable),
			goerr.V("repository", ev.Repository),
		)
	}

	logger.Info("Extracted working tree",
		"temp_dir", checkout.TempDir,
		"root", checkout.Root,
		"file_count", checkout.Files,
		"total_size_bytes", checkout.Size,
	)

	return checkout, nil
}

// extractZip extracts ZIP data into a fresh working directory and locates
// the tree root. The directory is removed again when extraction fails
// partway.
func (uc *publisher) extractZip(ctx context.Context, zipData []byte) (co *model.Checkout, retErr error) {
	logger := ctxlog.From(ctx)

	tempDir, err := os.MkdirTemp(uc.workDir, "slipway-run-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create working directory")
	}
	defer func() {
		if retErr != nil {
			_ = os.RemoveAll(tempDir)
		}
	}()

	if err := os.Chmod(tempDir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to set directory permissions", goerr.V("dir", tempDir))
	}

	logger.Debug("Created working directory", "temp_dir", tempDir)

	zipReader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open zip data")
	}

	var files int
	var totalSize int64

	for _, file := range zipReader.File {
		if err := extractFile(file, tempDir); err != nil {
			return nil, goerr.Wrap(err, "failed to extract file", goerr.V("name", file.Name))
		}
		if !file.FileInfo().IsDir() {
			files++
			totalSize += int64(file.UncompressedSize64)
		}
	}

	root, err := findTreeRoot(tempDir)
	if err != nil {
		return nil, err
	}

	return &model.Checkout{
		TempDir: tempDir,
		Root:    root,
		Files:   files,
		Size:    totalSize,
	}, nil
}

// findTreeRoot resolves the repository tree inside the extraction
// directory. Commit zipballs carry a single top-level directory; anything
// else uses the extraction directory itself.
func findTreeRoot(tempDir string) (string, error) {
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list working directory", goerr.V("dir", tempDir))
	}

	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(tempDir, entries[0].Name()), nil
	}
	return tempDir, nil
}

// extractFile extracts a single file from ZIP to the destination directory
func extractFile(file *zip.File, destDir string) error {
	// Security check: prevent path traversal attacks
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return goerr.New("invalid file path in archive", goerr.V("file", file.Name), goerr.V("dest", destPath))
	}

	rc, err := file.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open file in zip", goerr.V("file", file.Name))
	}
	defer rc.Close()

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, file.FileInfo().Mode())
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return goerr.Wrap(err, "failed to create parent directories", goerr.V("dir", filepath.Dir(destPath)))
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.FileInfo().Mode())
	if err != nil {
		return goerr.Wrap(err, "failed to create destination file", goerr.V("path", destPath))
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, rc); err != nil {
		return goerr.Wrap(err, "failed to copy file content", goerr.V("path", destPath))
	}

	return nil
}
