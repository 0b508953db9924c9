package fsx

import (
	"crypto/md5"
	"encoding/hex"
	"log"
	"os"
)

// IsRegularFile returns true IFF a non-directory file exists at the provided path.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)

	if os.IsNotExist(err) {
		return false
	}

	if info.IsDir() {
		return false
	}

	return true
}

// DirExists returns true IFF a directory exists at the provided path.
func DirExists(path string) bool {
	info, err := os.Stat(path)

	if os.IsNotExist(err) {
		return false
	}

	return info.IsDir()
}

// IsExecutable returns true IFF a regular file exists at the provided path
// with at least one execute bit set.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)

	if err != nil || info.IsDir() {
		return false
	}

	return info.Mode().Perm()&0111 != 0
}

// MD5 computes digest of file contents.
// if something goes wrong logs and returns an empty string.
func MD5(path string) string {
	var (
		err  error
		read []byte
	)

	if read, err = os.ReadFile(path); err != nil {
		log.Println("digest failed", err)
		return ""
	}

	digest := md5.Sum(read)

	return hex.EncodeToString(digest[:])
}
