package doclai

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key for a unit of the given document type.
// The document type is part of the key because the directive differs per type,
// so the same text may translate differently inside HTML and inside a notebook.
func CacheKey(docType DocumentType, hash, targetLang string) string {
	return string(docType) + ":" + hash + ":" + strings.ToLower(targetLang)
}
