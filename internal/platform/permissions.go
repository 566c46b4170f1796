package platform

import (
	"os"
	"runtime"
)

// Default permissions for extracted template content.
const (
	FilePerm = 0644
	ExecPerm = 0755
	DirPerm  = 0755
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// ArchiveFileMode maps the mode recorded in an archive header to the mode a
// regular file is written with. Only the executable bit survives; group and
// world write bits from the archive are never honoured.
func ArchiveFileMode(mode int64) os.FileMode {
	if mode&0111 != 0 {
		return ExecPerm
	}
	return FilePerm
}

// IsWindows returns true if the current OS is Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
