package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// MaxBaseNameLength bounds the sanitized base name so storage keys stay well under
// object store key limits.
const MaxBaseNameLength = 100

// SanitizeFileName maps a user-supplied file name to a storage-safe name.
// Every character of the base outside [A-Za-z0-9_-] becomes '_', the base is cut to
// MaxBaseNameLength characters and the extension (from the last '.') is kept as is.
func SanitizeFileName(name string) string {
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base, ext = name[:i], name[i:]
	}

	var b strings.Builder
	n := 0
	for _, r := range base {
		if n == MaxBaseNameLength {
			break
		}
		if isSafeRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	return b.String() + ext
}

// StorageKey derives the blob key for an upload: a time-ordered uniqueness token
// followed by the sanitized file name.
func StorageKey(now time.Time, fileName string) string {
	return fmt.Sprintf("%d-%s_%s", now.UnixMilli(), randomToken(), SanitizeFileName(fileName))
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	default:
		return false
	}
}

func randomToken() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(b[:])
}
