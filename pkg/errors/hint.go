package errors

// Exit codes returned by the depman binary.
const (
	ExitFailure   = 1
	ExitNoProject = 2
	ExitUsage     = 64 // EX_USAGE from sysexits.h
)

// ExitCode maps err to a process exit status. A missing project and bad
// input get their own codes so scripts can tell them apart from registry
// or I/O failures.
func ExitCode(err error) int {
	switch GetCode(err) {
	case ErrCodeNoProject:
		return ExitNoProject
	case ErrCodeInvalidInput, ErrCodeInvalidPackage, ErrCodeInvalidVersion, ErrCodeInvalidGroup, ErrCodeInvalidConfig:
		return ExitUsage
	}
	return ExitFailure
}

// Hint returns a suggestion for recovering from err, or "" when there is
// nothing useful to add to the message.
func Hint(err error) string {
	switch GetCode(err) {
	case ErrCodeNoProject:
		return "run depman inside an npm or Cargo project, or point --dir at one"
	case ErrCodeInvalidManifest:
		return "fix the manifest syntax; depman only rewrites manifests it can parse"
	case ErrCodeInvalidGroup:
		return "npm groups: dependencies, devDependencies, peerDependencies, optionalDependencies; Cargo groups: dependencies, dev-dependencies, build-dependencies"
	case ErrCodeInvalidConfig:
		return "check the config file, see depman --help for its location"
	case ErrCodeNetwork, ErrCodeTimeout:
		return "check the network connection or the --registry URL"
	case ErrCodeRateLimited:
		return "the registry is throttling requests, retry later or lower --concurrency"
	}
	return ""
}
