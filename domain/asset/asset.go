// Package asset provides the media asset value type and the storage-key
// conventions shared by the upload, privacy and analytics paths.
package asset

import (
	"strings"
	"time"
)

// Type categorizes an asset by media kind.
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
	TypeFile  Type = "file"
)

// ValidType reports whether t is a known asset type.
func ValidType(t Type) bool {
	switch t {
	case TypeImage, TypeVideo, TypeFile:
		return true
	}
	return false
}

// PrivateFolder is the reserved folder name for access-restricted objects.
const PrivateFolder = "private"

// Asset is a stored media object's metadata record (value type).
// The blob itself lives in object storage under S3Key; the CDN serves it
// at CDNURL. Deletion is soft: IsDeleted hides the asset but keeps its
// bandwidth history addressable by key.
type Asset struct {
	ID             string
	OwnerID        string
	Name           string
	Type           Type
	S3Bucket       string
	S3Key          string
	CDNURL         string
	SizeBytes      int64
	Width          int
	Height         int
	Format         string
	IsPrivate      bool
	OriginalFolder string
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Folder returns the folder segment of the storage key. Keys follow the
// "{owner}/{folder}/{file...}" convention; keys without a folder segment
// return "".
func (a Asset) Folder() string {
	parts := strings.Split(a.S3Key, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

// FileName returns the key's trailing segment.
func (a Asset) FileName() string {
	idx := strings.LastIndex(a.S3Key, "/")
	if idx < 0 {
		return a.S3Key
	}
	return a.S3Key[idx+1:]
}

// PrivateKey returns the storage key the asset moves to when made private:
// the folder segment is replaced with the reserved private folder.
func (a Asset) PrivateKey() string {
	return a.OwnerID + "/" + PrivateFolder + "/" + a.FileName()
}

// PublicKey returns the storage key the asset moves to when made public
// again, under the given folder.
func (a Asset) PublicKey(folder string) string {
	return a.OwnerID + "/" + folder + "/" + a.FileName()
}

// MatchesPath reports whether a CDN request path belongs to the storage
// key: the path is exactly "/"+key, or "/"+key+"/" followed by anything
// (transformation-suffixed variants like "/k/format=webp,width=100").
func MatchesPath(s3Key, path string) bool {
	prefix := "/" + s3Key
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// MatchesAnyPath reports whether the path belongs to any of the keys.
func MatchesAnyPath(keys []string, path string) bool {
	for _, k := range keys {
		if MatchesPath(k, path) {
			return true
		}
	}
	return false
}

// Keys extracts the storage keys from a list of assets.
func Keys(assets []Asset) []string {
	keys := make([]string, len(assets))
	for i, a := range assets {
		keys[i] = a.S3Key
	}
	return keys
}
