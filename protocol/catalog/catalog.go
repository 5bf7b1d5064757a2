package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// CombinedName is the display name of the combined catalog
	CombinedName = "Combined AltStore Repo"
	// CombinedIdentifier is the identifier of the combined catalog
	CombinedIdentifier = "com.example.combined-repo"
	// CombinedFileName is the file the combined catalog is written to
	CombinedFileName = "combined.json"
	// FallbackSourceURL is used when the hosting repository is unknown
	FallbackSourceURL = "https://raw.githubusercontent.com/YOUR_USERNAME/YOUR_REPO/main/combined.json"

	// AppsField is the list field every source document must expose
	AppsField = "apps"
	// BundleIdentifierField is the dedup key of an entry
	BundleIdentifierField = "bundleIdentifier"
)

// Entry is one app record, kept verbatim so unknown fields and key order survive.
type Entry = json.RawMessage

// Catalog is the document shape shared by every source, the combined file and each chunk.
type Catalog struct {
	Name       string                 `json:"name"`
	Identifier string                 `json:"identifier"`
	SourceURL  string                 `json:"sourceURL"`
	Apps       []Entry                `json:"apps"`
	UserInfo   map[string]interface{} `json:"userInfo"`
}

// New builds a catalog with empty user info. A nil apps slice is normalized to empty.
func New(name, identifier, sourceURL string, apps []Entry) *Catalog {
	if apps == nil {
		apps = []Entry{}
	}
	return &Catalog{
		Name:       name,
		Identifier: identifier,
		SourceURL:  sourceURL,
		Apps:       apps,
		UserInfo:   map[string]interface{}{},
	}
}

// SourceDocument is a fetched source with its apps list extracted.
type SourceDocument struct {
	URL  string
	Apps []Entry
}

// BundleKey returns the dedup key of an entry. Any object holding the
// bundleIdentifier field takes part, whatever the value's JSON type: strings
// are decoded and re-quoted, other values use their compacted token, so
// "42", 42, null and "" are four distinct keys.
// ok is false when the entry is not an object or lacks the field.
func BundleKey(e Entry) (key string, ok bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e, &fields); err != nil || fields == nil {
		return "", false
	}
	raw, exists := fields[BundleIdentifierField]
	if !exists {
		return "", false
	}

	var s string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		quoted, err := json.Marshal(s)
		if err != nil {
			return "", false
		}
		return string(quoted), true
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", false
	}
	return buf.String(), true
}

// CombinedSourceURL returns the self reference of the combined catalog hosted
// in the owner/repo GitHub repository, or FallbackSourceURL if either is empty.
func CombinedSourceURL(owner, repo string) string {
	if owner == "" || repo == "" {
		return FallbackSourceURL
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/main/%s", owner, repo, CombinedFileName)
}

// ChunkFileName returns the file name of the 1-based chunk n
func ChunkFileName(n int) string {
	return fmt.Sprintf("chunk_%d.json", n)
}

// ReplaceLastSegment swaps the final path segment of a URL (after the last '/') with name.
func ReplaceLastSegment(sourceURL, name string) string {
	i := strings.LastIndex(sourceURL, "/")
	if i < 0 {
		return name
	}
	return sourceURL[:i+1] + name
}

// Marshal renders the catalog with 2-space indentation and no trailing newline.
func Marshal(c *Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode catalog %s: %w", c.Identifier, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
