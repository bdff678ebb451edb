package pack

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
	"github.com/samhita-labs/grantha/internal/storage"
)

// State is the installer's lifecycle state.
type State string

const (
	StateNotInstalled State = "not_installed"
	StateDownloading  State = "downloading"
	StateInstalled    State = "installed"
	StateCancelled    State = "cancelled"
	StateFailed       State = "failed"
)

// quotaMargin is extra free space required beyond the pack's total
// size before a download starts.
const quotaMargin = 2_000_000

const (
	versionFile = "version.txt"
	enabledFile = ".enabled"
	lockFile    = ".install.lock"
)

// Progress reports download progress. Fraction weights each file by
// its manifest size, so it moves smoothly across files of any size.
type Progress struct {
	File       string
	FileIndex  int
	FileCount  int
	BytesDone  int64
	BytesTotal int64
	Fraction   float64
}

// ProgressFunc receives progress updates during Start.
type ProgressFunc func(Progress)

// Installer downloads and verifies the semantic pack. Concurrent Start
// calls in one process are coalesced; a file lock keeps a second
// process out of the same pack directory.
type Installer struct {
	store      *storage.FileStore
	locator    *storage.Locator
	client     *http.Client
	logger     *slog.Logger
	permissive bool
	onProgress ProgressFunc
	quotaFunc  func() (storage.Quota, error)

	group singleflight.Group

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// Option configures an Installer.
type Option func(*Installer)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Installer) { i.client = c }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(i *Installer) { i.onProgress = fn }
}

// WithPermissiveChecksums downgrades checksum mismatches to warnings.
func WithPermissiveChecksums(on bool) Option {
	return func(i *Installer) { i.permissive = on }
}

// WithQuotaFunc overrides the disk quota source, mainly for tests.
func WithQuotaFunc(fn func() (storage.Quota, error)) Option {
	return func(i *Installer) { i.quotaFunc = fn }
}

// NewInstaller creates an installer over store, resolving assets
// through loc.
func NewInstaller(store *storage.FileStore, loc *storage.Locator, logger *slog.Logger, opts ...Option) *Installer {
	i := &Installer{
		store:   store,
		locator: loc,
		client:  &http.Client{Timeout: 10 * time.Minute},
		logger:  logger,
		state:   StateNotInstalled,
	}
	i.quotaFunc = store.Quota
	for _, opt := range opts {
		opt(i)
	}
	if i.store.Exists(enabledFile) && i.store.Exists(versionFile) {
		i.state = StateInstalled
	}
	return i
}

// State returns the current lifecycle state.
func (i *Installer) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Installer) setState(s State) {
	i.mu.Lock()
	i.state = s
	i.mu.Unlock()
}

// Enabled reports whether semantic search is switched on: the marker
// file exists and a version is recorded.
func (i *Installer) Enabled() bool {
	return i.store.Exists(enabledFile) && i.store.Exists(versionFile)
}

// Version returns the installed pack version, or "" when absent.
func (i *Installer) Version() string {
	f, err := i.store.Open(versionFile)
	if err != nil {
		return ""
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, 256))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Start downloads the pack. Safe to call repeatedly: files already
// present and intact are skipped, so an interrupted install resumes
// where it stopped. Concurrent calls share one download.
func (i *Installer) Start(ctx context.Context) error {
	_, err, _ := i.group.Do("install", func() (interface{}, error) {
		return nil, i.install(ctx)
	})
	return err
}

// Cancel aborts an in-flight download.
func (i *Installer) Cancel() {
	i.mu.Lock()
	cancel := i.cancel
	if cancel != nil {
		i.state = StateCancelled
	}
	i.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (i *Installer) install(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	i.mu.Lock()
	i.cancel = cancel
	i.state = StateDownloading
	i.mu.Unlock()
	defer func() {
		i.mu.Lock()
		i.cancel = nil
		i.mu.Unlock()
	}()

	lock := flock.New(filepath.Join(i.store.Root(), lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		i.setState(StateFailed)
		return grerrors.New(grerrors.ErrCodeInstallFailed, "acquire install lock", err)
	}
	if !locked {
		i.setState(StateFailed)
		return grerrors.New(grerrors.ErrCodeInstallInFlight,
			"another process is installing into this pack directory", nil)
	}
	defer lock.Unlock()

	manifest, err := FetchManifest(ctx, i.client, i.locator)
	if err != nil {
		return i.fail(ctx, err)
	}

	// Quota gate runs before any asset bytes move.
	total := manifest.TotalSize()
	quota, err := i.quotaFunc()
	if err != nil {
		return i.fail(ctx, err)
	}
	needed := uint64(total) + quotaMargin
	if quota.AvailableBytes < needed {
		return i.fail(ctx, grerrors.QuotaError(needed, quota.AvailableBytes))
	}

	i.logger.Info("pack install started",
		slog.String("version", manifest.Version),
		slog.Int("files", len(manifest.Files)),
		slog.Int64("total_bytes", total))

	var done int64
	for idx, f := range manifest.Files {
		if err := ctx.Err(); err != nil {
			return i.fail(ctx, err)
		}
		if i.fileIntact(f) {
			i.logger.Debug("pack file already present", slog.String("path", f.Path))
			done += f.Size
			i.report(f, idx, len(manifest.Files), done, total)
			continue
		}
		if err := i.download(ctx, f, idx, len(manifest.Files), done, total); err != nil {
			return i.fail(ctx, err)
		}
		done += f.Size
	}

	if err := i.finalize(manifest); err != nil {
		return i.fail(ctx, err)
	}
	i.setState(StateInstalled)
	i.logger.Info("pack install complete", slog.String("version", manifest.Version))
	return nil
}

// fail records the failure, distinguishing cancellation.
func (i *Installer) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil && i.State() == StateCancelled {
		i.logger.Info("pack install cancelled")
		return grerrors.New(grerrors.ErrCodeInstallFailed, "install cancelled", ctx.Err())
	}
	i.setState(StateFailed)
	i.logger.Error("pack install failed", slog.String("error", err.Error()))
	return err
}

// fileIntact reports whether a manifest file is already on disk with
// the right size and checksum.
func (i *Installer) fileIntact(f ManifestFile) bool {
	info, err := i.store.Stat(f.Path)
	if err != nil || info.Size() != f.Size {
		return false
	}
	sum, err := i.checksum(f.Path)
	if err != nil {
		return false
	}
	return strings.EqualFold(sum, f.SHA256)
}

func (i *Installer) checksum(path string) (string, error) {
	r, err := i.store.Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// download streams one asset into the store, hashing as it goes.
func (i *Installer) download(ctx context.Context, f ManifestFile, idx, count int, doneBefore, total int64) error {
	return i.locator.Try(ctx, f.Path, func(ctx context.Context, url string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return grerrors.New(grerrors.ErrCodeAssetDownload, "build asset request", err)
		}
		resp, err := i.client.Do(req)
		if err != nil {
			return grerrors.New(grerrors.ErrCodeAssetDownload,
				fmt.Sprintf("download %s", f.Path), err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return grerrors.New(grerrors.ErrCodeAssetDownload,
				fmt.Sprintf("download %s returned %d", f.Path, resp.StatusCode), nil)
		}

		h := sha256.New()
		reader := &progressReader{
			inner: io.TeeReader(resp.Body, h),
			ctx:   ctx,
			tick: func(n int64) {
				i.report(f, idx, count, doneBefore+n, total)
			},
		}
		n, err := i.store.WriteFile(f.Path, reader)
		if err != nil {
			return err
		}
		if n != f.Size {
			i.store.Remove(f.Path)
			return grerrors.New(grerrors.ErrCodeAssetDownload,
				fmt.Sprintf("%s: got %d bytes, manifest says %d", f.Path, n, f.Size), nil)
		}

		sum := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(sum, f.SHA256) {
			if i.permissive {
				i.logger.Warn("pack file checksum mismatch, keeping file",
					slog.String("path", f.Path),
					slog.String("expected", f.SHA256),
					slog.String("actual", sum))
				return nil
			}
			i.store.Remove(f.Path)
			return grerrors.ChecksumError(f.Path, f.SHA256, sum)
		}
		return nil
	})
}

// finalize persists the manifest, version marker, and enable flag.
func (i *Installer) finalize(m *Manifest) error {
	data, err := manifestJSON(m)
	if err != nil {
		return err
	}
	if _, err := i.store.WriteFile(manifestPath, bytes.NewReader(data)); err != nil {
		return err
	}
	if _, err := i.store.WriteFile(versionFile, strings.NewReader(m.Version+"\n")); err != nil {
		return err
	}
	if _, err := i.store.WriteFile(enabledFile, strings.NewReader("1\n")); err != nil {
		return err
	}
	return nil
}

func (i *Installer) report(f ManifestFile, idx, count int, done, total int64) {
	if i.onProgress == nil {
		return
	}
	var frac float64
	if total > 0 {
		frac = float64(done) / float64(total)
		if frac > 1 {
			frac = 1
		}
	}
	i.onProgress(Progress{
		File:       f.Path,
		FileIndex:  idx,
		FileCount:  count,
		BytesDone:  done,
		BytesTotal: total,
		Fraction:   frac,
	})
}

// IsInstalled verifies against a freshly fetched manifest: every
// listed file must be present and full-size. Verification failure
// clears the enable flag so stale state self-heals.
func (i *Installer) IsInstalled(ctx context.Context) bool {
	manifest, err := FetchManifest(ctx, i.client, i.locator)
	if err != nil {
		// Offline: trust local state rather than disabling a working
		// install.
		return i.verifyLocal()
	}
	for _, f := range manifest.Files {
		info, err := i.store.Stat(f.Path)
		if err != nil || info.Size() != f.Size {
			i.disable()
			return false
		}
	}
	if i.Version() != manifest.Version {
		i.disable()
		return false
	}
	i.setState(StateInstalled)
	return true
}

// verifyLocal checks the pack against the locally saved manifest.
func (i *Installer) verifyLocal() bool {
	if !i.Enabled() {
		return false
	}
	manifest, err := loadLocalManifest(i.store)
	if err != nil {
		i.disable()
		return false
	}
	for _, f := range manifest.Files {
		info, err := i.store.Stat(f.Path)
		if err != nil || info.Size() != f.Size {
			i.disable()
			return false
		}
	}
	return true
}

// disable clears the enable flag after a failed verification.
func (i *Installer) disable() {
	if i.store.Exists(enabledFile) {
		i.logger.Warn("pack verification failed, disabling semantic search")
		i.store.Remove(enabledFile)
	}
	i.setState(StateNotInstalled)
}

// DeletePack removes every pack asset. Deleting an absent pack is a
// no-op.
func (i *Installer) DeletePack() error {
	if err := i.store.RemoveAll(); err != nil {
		return err
	}
	i.setState(StateNotInstalled)
	i.logger.Info("pack deleted", slog.String("dir", i.store.Root()))
	return nil
}

// Status summarizes the pack for reporting. Disk figures come from the
// quota probe over the pack directory; zero when the probe fails.
type Status struct {
	State          State  `json:"state"`
	Version        string `json:"version,omitempty"`
	Files          int    `json:"files"`
	TotalBytes     int64  `json:"total_bytes"`
	Dir            string `json:"dir"`
	DiskTotalBytes uint64 `json:"disk_total_bytes,omitempty"`
	DiskFreeBytes  uint64 `json:"disk_free_bytes,omitempty"`
}

// Status reports the local pack state without touching the network.
func (i *Installer) Status() Status {
	st := Status{State: i.State(), Version: i.Version(), Dir: i.store.Root()}
	if quota, err := i.quotaFunc(); err == nil {
		st.DiskTotalBytes = quota.TotalBytes
		st.DiskFreeBytes = quota.AvailableBytes
	}
	manifest, err := loadLocalManifest(i.store)
	if err != nil {
		return st
	}
	for _, f := range manifest.Files {
		if info, err := i.store.Stat(f.Path); err == nil {
			st.Files++
			st.TotalBytes += info.Size()
		}
	}
	return st
}

// progressReader counts bytes, honors cancellation between chunks, and
// fans progress out to the installer callback.
type progressReader struct {
	inner io.Reader
	ctx   context.Context
	tick  func(int64)
	n     int64
}

func (r *progressReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.inner.Read(p)
	if n > 0 {
		r.n += int64(n)
		r.tick(r.n)
	}
	return n, err
}
