package tlrun

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

// CacheKey generates a cache key from a text hash, the language pair and the
// backend namespace (provider name), so translations by different backends
// never shadow each other. The target keeps its region: zh-TW and zh-CN are
// different translations.
func CacheKey(hash, sourceLang, targetLang, namespace string) string {
	target := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(targetLang), "_", "-"))
	return hash + ":" + BaseLang(sourceLang) + ":" + target + ":" + namespace
}
