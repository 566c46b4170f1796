package scaffold

// Kind classifies a pipeline failure. It decides whether a rollback runs and
// what the user is told.
type Kind string

const (
	KindUsage             Kind = "UsageError"
	KindEnvironment       Kind = "EnvironmentError"
	KindDirectoryConflict Kind = "DirectoryConflictError"
	KindRegistry          Kind = "RegistryError"
	KindExtraction        Kind = "ExtractionError"
	KindManifest          Kind = "ManifestError"
	KindInstall           Kind = "InstallError"
	KindUnexpected        Kind = "UnexpectedError"
)

// Error is a classified pipeline failure. Hint, when set, is a corrective
// suggestion shown after the message.
type Error struct {
	Kind Kind
	Err  error
	Hint string
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, hint string) *Error {
	return &Error{Kind: kind, Err: err, Hint: hint}
}
