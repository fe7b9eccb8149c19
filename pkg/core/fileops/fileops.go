// Package fileops provides file-level facts for the FILE report
// section: size and content hash.
package fileops

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// Info holds the file-level facts rendered in the FILE section.
type Info struct {
	Path      string
	SizeBytes int64
	HashAlgo  string
	Hash      string
}

// Collect stats the file and computes its hash with the given algorithm
// ("sha1" or "sha256").
func Collect(path, algo string) (*Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file '%s': %w", path, err)
	}
	digest, err := HashFile(path, algo)
	if err != nil {
		return nil, err
	}
	return &Info{
		Path:      path,
		SizeBytes: stat.Size(),
		HashAlgo:  strings.ToUpper(algo),
		Hash:      digest,
	}, nil
}

// HashFile computes the hex digest of a file's content.
func HashFile(path, algo string) (string, error) {
	var h hash.Hash
	switch strings.ToLower(algo) {
	case "sha1":
		h = sha1.New()
	case "sha256":
		h = sha256.New()
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", algo)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing '%s': %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to hash file content '%s': %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
