package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// Algorithm identifies how two files are compared.
type Algorithm string

const (
	// SHA256 is a streamed cryptographic digest and the only algorithm
	// that proves content equality.
	SHA256 Algorithm = "sha256"
	// Quick compares size and modification time. It answers "looks
	// plausible", never "is proven identical", and is tagged as such
	// wherever its results flow downstream.
	Quick Algorithm = "quick"
)

// chunkSize bounds memory per read regardless of file size.
const chunkSize = 64 * 1024

// ParseAlgorithm validates a user-supplied algorithm name.
func ParseAlgorithm(value string) (Algorithm, error) {
	switch Algorithm(value) {
	case SHA256:
		return SHA256, nil
	case Quick:
		return Quick, nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q (use sha256 or quick)", value)
	}
}

// CleanupEligible reports whether results produced under this algorithm may
// gate source deletion.
func (a Algorithm) CleanupEligible() bool {
	return a == SHA256
}

// ComputeFileHash streams the file through SHA-256 and returns the hex digest.
// Unreadable files return an explicit error, never an empty digest.
func ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(hasher, f, buf); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// QuickSignature captures the cheap attributes used by the quick comparison.
type QuickSignature struct {
	Size    int64
	ModTime time.Time
}

// QuickSignatureOf stats the file for a quick comparison.
func QuickSignatureOf(path string) (QuickSignature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return QuickSignature{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return QuickSignature{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// CompareFiles compares source and destination under the given algorithm.
// For SHA256 both digests are returned so callers can persist them. For Quick
// only size equality decides the match; copies legitimately change mtime.
func CompareFiles(source, destination string, algorithm Algorithm) (match bool, sourceHash, destinationHash string, err error) {
	switch algorithm {
	case Quick:
		srcSig, err := QuickSignatureOf(source)
		if err != nil {
			return false, "", "", err
		}
		dstSig, err := QuickSignatureOf(destination)
		if err != nil {
			return false, "", "", err
		}
		return srcSig.Size == dstSig.Size, "", "", nil
	case SHA256:
		sourceHash, err = ComputeFileHash(source)
		if err != nil {
			return false, "", "", err
		}
		destinationHash, err = ComputeFileHash(destination)
		if err != nil {
			return false, sourceHash, "", err
		}
		return sourceHash == destinationHash, sourceHash, destinationHash, nil
	default:
		return false, "", "", fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

// MatchesAny hashes source once and walks candidates until one matches.
// Candidates that cannot be read are skipped; they may have vanished since
// enumeration. Returns the matching path and both digests, or an empty path
// when nothing matched.
func MatchesAny(source string, candidates []string) (matchPath, sourceHash, destinationHash string, err error) {
	sourceHash, err = ComputeFileHash(source)
	if err != nil {
		return "", "", "", err
	}
	for _, candidate := range candidates {
		candidateHash, hashErr := ComputeFileHash(candidate)
		if hashErr != nil {
			continue
		}
		if candidateHash == sourceHash {
			return candidate, sourceHash, candidateHash, nil
		}
	}
	return "", sourceHash, "", nil
}
