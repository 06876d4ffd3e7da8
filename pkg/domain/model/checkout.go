package model

// Checkout is the extracted working tree of one commit. TempDir is owned by
// the publish run and removed when the run ends; Root points at the
// repository tree inside it (commit zipballs carry one top-level
// directory).
type Checkout struct {
	TempDir string
	Root    string
	Files   int
	Size    int64
}
