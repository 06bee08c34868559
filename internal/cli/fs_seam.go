package cli

import "os"

// Filesystem seams, swapped out in tests.
var (
	osStat      = os.Stat
	osWriteFile = func(path string, b []byte, perm uint32) error {
		return os.WriteFile(path, b, os.FileMode(perm))
	}
	osMkdirAll = func(path string, perm uint32) error {
		return os.MkdirAll(path, os.FileMode(perm))
	}
)
