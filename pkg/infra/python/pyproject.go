package python

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/m-mizutani/slipway/pkg/domain/model"
)

type pyprojectFile struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ReadProjectMeta reads the name and version the repository declares in
// pyproject.toml, preferring [project] over [tool.poetry]. A repository
// without pyproject.toml, or one that declares neither table, returns
// (nil, nil): projects driven by setup.py alone expose nothing readable
// before the build.
func ReadProjectMeta(dir string) (*model.ProjectMeta, error) {
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read pyproject.toml", goerr.V("dir", dir))
	}

	var doc pyprojectFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse pyproject.toml", goerr.V("dir", dir))
	}

	meta := &model.ProjectMeta{Name: doc.Project.Name, Version: doc.Project.Version}
	if meta.Name == "" {
		meta.Name = doc.Tool.Poetry.Name
		meta.Version = doc.Tool.Poetry.Version
	}
	if meta.Name == "" {
		return nil, nil
	}

	return meta, nil
}
