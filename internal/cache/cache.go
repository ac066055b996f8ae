// Package cache stores fetched contract bodies and clause analyses
// in a memory layer backed by an on-disk layer.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

const keyPrefix = "clauserisk:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// URLKey is the key for a fetched document body
func URLKey(url string) string {
	return keyPrefix + "fetch:" + digest(url)
}

// TextKey is the key for the clause analyses of a normalized text.
// The text hash makes any edit to the contract a cache miss.
func TextKey(text string) string {
	return keyPrefix + "analysis:" + digest(text)
}

func digest(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// GetJSON decodes a cached JSON value into v
func GetJSON(c Cache, key string, v interface{}) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON stores v as JSON using the layer default TTLs
func SetJSON(c Cache, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(key, data, 0)
}
