package python_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/slipway/pkg/infra/python"
)

func TestReadProjectMeta(t *testing.T) {
	t.Run("PEP 621 project table", func(t *testing.T) {
		dir := t.TempDir()
		content := `[project]
name = "mylib"
version = "1.2.3"
requires-python = ">=3.8"

[build-system]
requires = ["setuptools"]
`
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0o644))

		meta, err := python.ReadProjectMeta(dir)
		gt.NoError(t, err)
		gt.V(t, meta).NotNil()
		gt.Value(t, meta.Name).Equal("mylib")
		gt.Value(t, meta.Version).Equal("1.2.3")
	})

	t.Run("poetry table fallback", func(t *testing.T) {
		dir := t.TempDir()
		content := `[tool.poetry]
name = "poetlib"
version = "0.9.0"
description = "managed by poetry"
`
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0o644))

		meta, err := python.ReadProjectMeta(dir)
		gt.NoError(t, err)
		gt.V(t, meta).NotNil()
		gt.Value(t, meta.Name).Equal("poetlib")
		gt.Value(t, meta.Version).Equal("0.9.0")
	})

	t.Run("project table wins over poetry", func(t *testing.T) {
		dir := t.TempDir()
		content := `[project]
name = "mylib"
version = "1.2.3"

[tool.poetry]
name = "poetlib"
version = "0.9.0"
`
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0o644))

		meta, err := python.ReadProjectMeta(dir)
		gt.NoError(t, err)
		gt.Value(t, meta.Name).Equal("mylib")
	})

	t.Run("no pyproject.toml", func(t *testing.T) {
		meta, err := python.ReadProjectMeta(t.TempDir())
		gt.NoError(t, err)
		gt.Value(t, meta).Nil()
	})

	t.Run("declares neither table", func(t *testing.T) {
		dir := t.TempDir()
		content := `[build-system]
requires = ["setuptools", "wheel"]
`
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0o644))

		meta, err := python.ReadProjectMeta(dir)
		gt.NoError(t, err)
		gt.Value(t, meta).Nil()
	})

	t.Run("invalid TOML", func(t *testing.T) {
		dir := t.TempDir()
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("[project\nname ="), 0o644))

		_, err := python.ReadProjectMeta(dir)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("failed to parse pyproject.toml")
	})
}
