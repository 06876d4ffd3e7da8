package python

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/slipway/pkg/domain/model"
)

// VersionMatchesPin reports whether an interpreter version satisfies a pin
// by component prefix: pin "3.8" accepts "3.8.18" but not "3.81.0". An
// empty pin accepts everything.
func VersionMatchesPin(version, pin string) bool {
	if pin == "" {
		return true
	}
	return version == pin || strings.HasPrefix(version, pin+".")
}

// FindSdist returns the path of the one source distribution in distDir.
// Zero or several candidates is an error: the build must yield exactly one
// artifact to publish.
func FindSdist(distDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(distDir, "*.tar.gz"))
	if err != nil {
		return "", goerr.Wrap(err, "failed to list dist directory", goerr.V("dir", distDir))
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", goerr.New("build produced no source distribution", goerr.V("dir", distDir))
	default:
		return "", goerr.New("build produced multiple source distributions",
			goerr.V("dir", distDir), goerr.V("files", matches))
	}
}

// InspectSdist reads the source distribution: size, digests, and the
// PKG-INFO metadata stored inside the tarball. The PKG-INFO content is what
// the registry receives; nothing is re-derived from the repository.
func InspectSdist(path string) (*model.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read source distribution", goerr.V("path", path))
	}

	sha := sha256.Sum256(data)
	md5sum := md5.Sum(data)

	meta, err := extractPkgInfo(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read PKG-INFO", goerr.V("path", path))
	}

	if meta.name == "" || meta.version == "" {
		return nil, goerr.New("PKG-INFO lacks name or version", goerr.V("path", path))
	}

	return &model.Artifact{
		FileName: filepath.Base(path),
		Path:     path,
		Name:     meta.name,
		Version:  meta.version,
		Size:     int64(len(data)),
		SHA256:   hex.EncodeToString(sha[:]),
		MD5:      hex.EncodeToString(md5sum[:]),
		Metadata: meta.dist,
	}, nil
}

type pkgInfo struct {
	name    string
	version string
	dist    model.DistMetadata
}

// extractPkgInfo finds the top-level PKG-INFO entry of the tarball. Sdists
// carry one directory <name>-<version>/ with PKG-INFO directly inside it;
// deeper copies (egg-info) are ignored.
func extractPkgInfo(r io.Reader) (*pkgInfo, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read tar entry")
		}

		name := strings.TrimSuffix(hdr.Name, "/")
		if filepath.Base(name) != "PKG-INFO" || strings.Count(name, "/") != 1 {
			continue
		}

		return parsePkgInfo(tr)
	}

	return nil, goerr.New("no PKG-INFO entry in source distribution")
}

// parsePkgInfo reads the RFC 822 style metadata headers. Anything after the
// blank line is the long description (metadata 2.1 and later).
func parsePkgInfo(r io.Reader) (*pkgInfo, error) {
	tp := textproto.NewReader(bufio.NewReader(r))
	header, err := tp.ReadMIMEHeader()
	if err != nil && err != io.EOF {
		return nil, goerr.Wrap(err, "failed to parse PKG-INFO headers")
	}

	body, err := io.ReadAll(tp.R)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read PKG-INFO body")
	}

	return &pkgInfo{
		name:    header.Get("Name"),
		version: header.Get("Version"),
		dist: model.DistMetadata{
			MetadataVersion: header.Get("Metadata-Version"),
			Summary:         header.Get("Summary"),
			Description:     strings.TrimSpace(string(body)),
			HomePage:        header.Get("Home-Page"),
			Author:          header.Get("Author"),
			AuthorEmail:     header.Get("Author-Email"),
			License:         header.Get("License"),
			Classifiers:     header.Values("Classifier"),
			RequiresPython:  header.Get("Requires-Python"),
		},
	}, nil
}
