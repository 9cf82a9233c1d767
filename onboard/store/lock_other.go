//go:build !unix

package store

import "os"

// Advisory locking is only available on unix; elsewhere a single controller
// is assumed.
func lockFile(f *os.File) error {
	return nil
}

func unlockFile(f *os.File) error {
	return nil
}
