package builds

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"versioning-backend/src/contracts"
)

// digestLength is the number of hex characters of the tuple digest kept in
// the key.
const digestLength = 16

// BuildID derives the document key for one
// [imageType, baseOs, unityVersion, targetPlatform, repoVersion] combination.
//
// The key is a readable slug followed by a digest of the exact tuple, so
// combinations that slug the same (case, separators, punctuation) still get
// distinct keys. Keys are safe to use in URLs.
func BuildID(imageType contracts.ImageType, info contracts.BuildVersionInfo) string {
	parts := []string{
		string(imageType),
		info.BaseOS,
		info.UnityVersion,
		info.TargetPlatform,
		info.RepoVersion,
	}

	slug := make([]string, len(parts))
	for i, part := range parts {
		slug[i] = sanitizeKeyPart(part)
	}
	return strings.Join(slug, "-") + "-" + tupleDigest(parts)
}

// tupleDigest hashes the length-prefixed parts, so no two distinct tuples
// share an encoding.
func tupleDigest(parts []string) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%d:%s;", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))[:digestLength]
}

func sanitizeKeyPart(part string) string {
	part = strings.ToLower(strings.TrimSpace(part))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, part)
}
