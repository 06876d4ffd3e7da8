package python_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/slipway/pkg/infra/python"
)

type tarEntry struct {
	name    string
	content string
}

// makeTarGz builds a gzipped tarball with the entries in the given order.
func makeTarGz(t *testing.T, entries []tarEntry) []byte {
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	for _, e := range entries {
		hdr := &tar.Header{
			Name: e.name,
			Mode: 0o644,
			Size: int64(len(e.content)),
		}
		gt.NoError(t, tarWriter.WriteHeader(hdr))
		_, err := tarWriter.Write([]byte(e.content))
		gt.NoError(t, err)
	}

	gt.NoError(t, tarWriter.Close())
	gt.NoError(t, gzWriter.Close())

	return buf.Bytes()
}

const testPkgInfo = `Metadata-Version: 2.1
Name: mylib
Version: 1.2.3
Summary: Helpers for milling about
Home-page: https://github.com/acme/mylib
Author: Acme Robotics
Author-email: oss@acme.example
License: Apache-2.0
Classifier: Programming Language :: Python :: 3
Classifier: License :: OSI Approved :: Apache Software License
Requires-Python: >=3.8

Helpers for milling about, packaged for the index.
`

func TestVersionMatchesPin(t *testing.T) {
	tests := []struct {
		version string
		pin     string
		want    bool
	}{
		{"3.8.18", "", true},
		{"3.8.18", "3.8", true},
		{"3.8", "3.8", true},
		{"3.8.18", "3.8.18", true},
		{"3.81.0", "3.8", false},
		{"3.12.1", "3.8", false},
		{"2.7.18", "3", false},
		{"3.12.1", "3", true},
	}

	for _, tt := range tests {
		t.Run(tt.version+"_vs_"+tt.pin, func(t *testing.T) {
			gt.Equal(t, python.VersionMatchesPin(tt.version, tt.pin), tt.want)
		})
	}
}

func TestFindSdist(t *testing.T) {
	t.Run("exactly one candidate", func(t *testing.T) {
		dir := t.TempDir()
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "mylib-1.2.3.tar.gz"), []byte("x"), 0o644))
		// Wheels and metadata files in dist/ are not candidates
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "mylib-1.2.3-py3-none-any.whl"), []byte("x"), 0o644))

		path, err := python.FindSdist(dir)
		gt.NoError(t, err)
		gt.Value(t, filepath.Base(path)).Equal("mylib-1.2.3.tar.gz")
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := python.FindSdist(t.TempDir())
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("no source distribution")
	})

	t.Run("multiple candidates", func(t *testing.T) {
		dir := t.TempDir()
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "mylib-1.2.3.tar.gz"), []byte("x"), 0o644))
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "mylib-1.2.4.tar.gz"), []byte("x"), 0o644))

		_, err := python.FindSdist(dir)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("multiple source distributions")
	})
}

func TestInspectSdist(t *testing.T) {
	dir := t.TempDir()
	data := makeTarGz(t, []tarEntry{
		{name: "mylib-1.2.3/PKG-INFO", content: testPkgInfo},
		{name: "mylib-1.2.3/setup.py", content: "from setuptools import setup\n\nsetup()\n"},
	})
	path := filepath.Join(dir, "mylib-1.2.3.tar.gz")
	gt.NoError(t, os.WriteFile(path, data, 0o644))

	artifact, err := python.InspectSdist(path)
	gt.NoError(t, err)

	gt.Value(t, artifact.FileName).Equal("mylib-1.2.3.tar.gz")
	gt.Value(t, artifact.Path).Equal(path)
	gt.Value(t, artifact.Name).Equal("mylib")
	gt.Value(t, artifact.Version).Equal("1.2.3")
	gt.Value(t, artifact.Size).Equal(int64(len(data)))
	gt.Number(t, len(artifact.SHA256)).Equal(64)
	gt.Number(t, len(artifact.MD5)).Equal(32)

	gt.Value(t, artifact.Metadata.MetadataVersion).Equal("2.1")
	gt.Value(t, artifact.Metadata.Summary).Equal("Helpers for milling about")
	gt.Value(t, artifact.Metadata.HomePage).Equal("https://github.com/acme/mylib")
	gt.Value(t, artifact.Metadata.Author).Equal("Acme Robotics")
	gt.Value(t, artifact.Metadata.AuthorEmail).Equal("oss@acme.example")
	gt.Value(t, artifact.Metadata.License).Equal("Apache-2.0")
	gt.Equal(t, len(artifact.Metadata.Classifiers), 2)
	gt.Value(t, artifact.Metadata.RequiresPython).Equal(">=3.8")
	gt.String(t, artifact.Metadata.Description).Contains("packaged for the index")
}

func TestInspectSdist_TopLevelPkgInfoWins(t *testing.T) {
	// The egg-info copy sits deeper in the tree and must not shadow the
	// top-level PKG-INFO, whatever the archive order.
	dir := t.TempDir()
	data := makeTarGz(t, []tarEntry{
		{name: "mylib-1.2.3/mylib.egg-info/PKG-INFO", content: "Metadata-Version: 2.1\nName: wrong\nVersion: 0.0.0\n"},
		{name: "mylib-1.2.3/PKG-INFO", content: testPkgInfo},
	})
	path := filepath.Join(dir, "mylib-1.2.3.tar.gz")
	gt.NoError(t, os.WriteFile(path, data, 0o644))

	artifact, err := python.InspectSdist(path)
	gt.NoError(t, err)
	gt.Value(t, artifact.Name).Equal("mylib")
	gt.Value(t, artifact.Version).Equal("1.2.3")
}

func TestInspectSdist_Errors(t *testing.T) {
	t.Run("no PKG-INFO entry", func(t *testing.T) {
		dir := t.TempDir()
		data := makeTarGz(t, []tarEntry{
			{name: "mylib-1.2.3/setup.py", content: "from setuptools import setup\n\nsetup()\n"},
		})
		path := filepath.Join(dir, "mylib-1.2.3.tar.gz")
		gt.NoError(t, os.WriteFile(path, data, 0o644))

		_, err := python.InspectSdist(path)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("no PKG-INFO entry")
	})

	t.Run("PKG-INFO lacks name", func(t *testing.T) {
		dir := t.TempDir()
		data := makeTarGz(t, []tarEntry{
			{name: "mylib-1.2.3/PKG-INFO", content: "Metadata-Version: 2.1\nSummary: nameless\n"},
		})
		path := filepath.Join(dir, "mylib-1.2.3.tar.gz")
		gt.NoError(t, os.WriteFile(path, data, 0o644))

		_, err := python.InspectSdist(path)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("lacks name or version")
	})

	t.Run("not a gzip file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mylib-1.2.3.tar.gz")
		gt.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

		_, err := python.InspectSdist(path)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("failed to read PKG-INFO")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := python.InspectSdist(filepath.Join(t.TempDir(), "absent.tar.gz"))
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("failed to read source distribution")
	})
}
