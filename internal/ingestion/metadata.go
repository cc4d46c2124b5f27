package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source kinds.
const (
	SourceText = "text"
	SourceFile = "file"
	SourceURL  = "url"
)

// Metadata describes where an ingested document came from.
type Metadata struct {
	Source    string    `json:"source"`
	Location  string    `json:"location,omitempty"`
	Format    string    `json:"format"`
	Hash      string    `json:"hash"`
	Bytes     int       `json:"bytes"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMetadata records the source and content hash of cleaned text.
func NewMetadata(source, location, format, cleaned string) *Metadata {
	return &Metadata{
		Source:    source,
		Location:  location,
		Format:    format,
		Hash:      ContentHash(cleaned),
		Bytes:     len(cleaned),
		Timestamp: time.Now().UTC(),
	}
}

// ContentHash is the hex SHA-256 of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
