package model

// ProjectMeta is the name and version the repository declares for itself,
// read before the build for logging and the run record. The sdist's
// PKG-INFO stays authoritative for upload metadata.
type ProjectMeta struct {
	Name    string
	Version string
}
