package model

// Artifact is the one source distribution produced by the build step.
// Path is the local file location and is meaningless once the run ends;
// Name and Version come from the sdist's PKG-INFO, not the repository.
type Artifact struct {
	FileName string `firestore:"file_name" json:"file_name"`
	Path     string `firestore:"-" json:"-"`
	Name     string `firestore:"name" json:"name"`
	Version  string `firestore:"version" json:"version"`
	Size     int64  `firestore:"size" json:"size"`
	SHA256   string `firestore:"sha256" json:"sha256"`
	MD5      string `firestore:"md5" json:"md5"`

	Metadata DistMetadata `firestore:"metadata" json:"metadata"`
}

// DistMetadata is the subset of sdist PKG-INFO fields the upload API
// accepts. Description is excluded from persistence because it can be the
// whole README.
type DistMetadata struct {
	MetadataVersion string   `firestore:"metadata_version" json:"metadata_version"`
	Summary         string   `firestore:"summary,omitempty" json:"summary,omitempty"`
	Description     string   `firestore:"-" json:"-"`
	HomePage        string   `firestore:"home_page,omitempty" json:"home_page,omitempty"`
	Author          string   `firestore:"author,omitempty" json:"author,omitempty"`
	AuthorEmail     string   `firestore:"author_email,omitempty" json:"author_email,omitempty"`
	License         string   `firestore:"license,omitempty" json:"license,omitempty"`
	Classifiers     []string `firestore:"classifiers,omitempty" json:"classifiers,omitempty"`
	RequiresPython  string   `firestore:"requires_python,omitempty" json:"requires_python,omitempty"`
}
