// Package pack installs and verifies the semantic pack: manifest
// fetching, quota-checked resumable downloads with checksum
// verification, install state tracking, and a filesystem watcher that
// degrades state when assets disappear underneath us.
package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
	"github.com/samhita-labs/grantha/internal/storage"
)

// ManifestFile describes one downloadable asset.
type ManifestFile struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Manifest describes a pack release.
type Manifest struct {
	Version string         `json:"version"`
	Files   []ManifestFile `json:"files"`
}

// TotalSize sums the declared asset sizes.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}

// File looks up an asset by path.
func (m *Manifest) File(path string) (ManifestFile, bool) {
	for _, f := range m.Files {
		if f.Path == path {
			return f, true
		}
	}
	return ManifestFile{}, false
}

// manifestPath is where the active manifest is kept inside the store.
const manifestPath = "manifest.json"

// FetchManifest downloads and validates the pack manifest. Caching is
// disabled end to end so installed-state checks never trust a stale
// copy.
func FetchManifest(ctx context.Context, client *http.Client, loc *storage.Locator) (*Manifest, error) {
	var manifest *Manifest
	err := loc.Try(ctx, manifestPath, func(ctx context.Context, url string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return grerrors.New(grerrors.ErrCodeManifestFetch, "build manifest request", err)
		}
		req.Header.Set("Cache-Control", "no-store")

		resp, err := client.Do(req)
		if err != nil {
			return grerrors.New(grerrors.ErrCodeManifestFetch, "fetch manifest", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return grerrors.New(grerrors.ErrCodeManifestFetch,
				fmt.Sprintf("manifest fetch returned %d from %s", resp.StatusCode, url), nil)
		}

		var m Manifest
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&m); err != nil {
			return grerrors.New(grerrors.ErrCodeManifestFetch, "decode manifest", err)
		}
		if err := validateManifest(&m); err != nil {
			return err
		}
		manifest = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

func validateManifest(m *Manifest) error {
	if m.Version == "" {
		return grerrors.New(grerrors.ErrCodeManifestFetch, "manifest has no version", nil)
	}
	if len(m.Files) == 0 {
		return grerrors.New(grerrors.ErrCodeManifestFetch, "manifest lists no files", nil)
	}
	for _, f := range m.Files {
		if f.Path == "" || f.Size < 0 || f.SHA256 == "" {
			return grerrors.New(grerrors.ErrCodeManifestFetch,
				fmt.Sprintf("manifest entry %q is malformed", f.Path), nil)
		}
	}
	return nil
}

func manifestJSON(m *Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeInternal, "encode manifest", err)
	}
	return data, nil
}

// loadLocalManifest reads the manifest saved by the last install.
func loadLocalManifest(store *storage.FileStore) (*Manifest, error) {
	f, err := store.Open(manifestPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, grerrors.New(grerrors.ErrCodePackCorrupt, "decode local manifest", err)
	}
	return &m, nil
}
