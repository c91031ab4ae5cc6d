package syncfolder

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// chunkSize bounds a single read while hashing
	chunkSize = 1 << 20

	// DefaultChecksumSizeLimit is the default digest prefix, in MiB
	DefaultChecksumSizeLimit = 4
)

// MaxDigestBytes converts a checksum size limit in MiB to a byte count.
// A non-positive limit means the whole file is digested.
func MaxDigestBytes(limitMiB int64) int64 {
	if limitMiB <= 0 {
		return 0
	}
	return limitMiB * 1024 * 1024
}

// Checksum returns the hex encoded SHA-512 of at most the first maxBytes of
// the file at path. maxBytes <= 0 digests the entire file.
func Checksum(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}
	defer f.Close()

	h := sha512.New()
	buf := make([]byte, chunkSize)
	remaining := maxBytes

	for {
		n := len(buf)
		if maxBytes > 0 {
			if remaining <= 0 {
				break
			}
			if remaining < int64(n) {
				n = int(remaining)
			}
		}

		read, err := f.Read(buf[:n])
		if read > 0 {
			h.Write(buf[:read])
			remaining -= int64(read)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", &IOError{Path: path, Err: fmt.Errorf("read: %w", err)}
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
