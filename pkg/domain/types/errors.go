package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classifying pipeline failures. Each failing step attaches
// exactly one of these; FailureKindOf maps an error back to its kind.
var (
	ErrTagSourceUnavailable    = goerr.NewTag("source_unavailable")
	ErrTagToolchainUnavailable = goerr.NewTag("toolchain_unavailable")
	ErrTagDependencyInstall    = goerr.NewTag("dependency_install_failed")
	ErrTagBuild                = goerr.NewTag("build_failed")
	ErrTagAuthentication       = goerr.NewTag("authentication_failed")
	ErrTagDuplicateVersion     = goerr.NewTag("duplicate_version")
	ErrTagNetwork              = goerr.NewTag("network_failed")
)

// ErrTagBadRequest marks errors caused by malformed or unauthorized input
// on the HTTP surfaces, mapped to 4xx responses.
var ErrTagBadRequest = goerr.NewTag("bad_request")

var kindByTag = []struct {
	tag  goerr.Tag
	kind FailureKind
}{
	{ErrTagSourceUnavailable, FailureSourceUnavailable},
	{ErrTagToolchainUnavailable, FailureToolchainUnavailable},
	{ErrTagDependencyInstall, FailureDependencyInstall},
	{ErrTagBuild, FailureBuild},
	{ErrTagAuthentication, FailureAuthentication},
	{ErrTagDuplicateVersion, FailureDuplicateVersion},
	{ErrTagNetwork, FailureNetwork},
}

// FailureKindOf returns the failure kind carried by err's tag. Errors from
// outside the pipeline taxonomy fall back to FailureNetwork, which keeps
// unexpected transport and infrastructure errors in the terminal bucket.
func FailureKindOf(err error) FailureKind {
	for _, m := range kindByTag {
		if goerr.HasTag(err, m.tag) {
			return m.kind
		}
	}
	return FailureNetwork
}
