// Package watch analyses documents dropped into an inbox directory.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/clausewise/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before it is analysed.
// Editors and copy tools write in several bursts.
const DefaultSettle = 750 * time.Millisecond

// Result reports the outcome for one inbox file.
type Result struct {
	Path     string
	Analysis *domain.DocumentAnalysis
	Err      error
}

// Inbox feeds files from a watched directory into the analysis service.
// Identical content is analysed once per process.
type Inbox struct {
	watcher  *filesystem.Watcher
	analysis driving.AnalysisService
	settle   time.Duration
	existing bool

	mu      sync.Mutex
	seen    map[string]bool
	pending map[string]*time.Timer
	log     *logger.Scoped
}

// NewInbox creates an inbox over dir.
func NewInbox(dir string, analysis driving.AnalysisService) *Inbox {
	return &Inbox{
		watcher:  filesystem.NewWatcher(dir),
		analysis: analysis,
		settle:   DefaultSettle,
		seen:     make(map[string]bool),
		pending:  make(map[string]*time.Timer),
		log:      logger.With("watch"),
	}
}

// SetSettle overrides the quiet period before analysis.
func (in *Inbox) SetSettle(d time.Duration) {
	in.settle = d
}

// SetIncludeExisting makes Run analyse files already present at startup.
func (in *Inbox) SetIncludeExisting(v bool) {
	in.existing = v
}

// Run watches until ctx is cancelled, sending one Result per analysed file.
// The results channel is closed when Run returns.
func (in *Inbox) Run(ctx context.Context, results chan<- Result) error {
	defer close(results)

	changes, err := in.watcher.Watch(ctx)
	if err != nil {
		return err
	}
	defer in.watcher.Close()

	ready := make(chan string, 16)
	done := make(chan struct{})
	defer close(done)
	defer in.stopPending()

	if in.existing {
		if err := in.queueExisting(ctx, ready); err != nil {
			return err
		}
	}

	in.log.Info("Watching %s", in.watcher.Root())
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			in.handle(change, ready, done)
		case path := <-ready:
			res := in.process(ctx, path)
			if res == nil {
				continue
			}
			select {
			case results <- *res:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (in *Inbox) queueExisting(ctx context.Context, ready chan<- string) error {
	entries, err := os.ReadDir(in.watcher.Root())
	if err != nil {
		return fmt.Errorf("list inbox: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filesystem.IsHidden(e.Name()) {
			continue
		}
		path := filepath.Join(in.watcher.Root(), e.Name())
		go func() {
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		}()
	}
	return nil
}

// handle debounces create and write events per path.
func (in *Inbox) handle(change filesystem.Change, ready chan<- string, done <-chan struct{}) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if t, ok := in.pending[change.Path]; ok {
		t.Stop()
		delete(in.pending, change.Path)
	}
	if change.Type == filesystem.ChangeDeleted {
		return
	}

	path := change.Path
	in.pending[path] = time.AfterFunc(in.settle, func() {
		in.mu.Lock()
		delete(in.pending, path)
		in.mu.Unlock()
		select {
		case ready <- path:
		case <-done:
		}
	})
}

func (in *Inbox) stopPending() {
	in.mu.Lock()
	defer in.mu.Unlock()

	for p, t := range in.pending {
		t.Stop()
		delete(in.pending, p)
	}
}

// process analyses one file. It returns nil for files that were skipped.
func (in *Inbox) process(ctx context.Context, path string) *Result {
	upload, err := filesystem.ReadUpload(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &Result{Path: path, Err: err}
	}
	if !domain.IsSupportedMimeType(upload.MimeType) {
		in.log.Debug("Skipping %s (%s)", path, upload.MimeType)
		return nil
	}

	sum := sha256.Sum256(upload.Data)
	key := hex.EncodeToString(sum[:])
	in.mu.Lock()
	dup := in.seen[key]
	in.seen[key] = true
	in.mu.Unlock()
	if dup {
		in.log.Debug("Skipping %s, content already analysed", path)
		return nil
	}

	analysis, err := in.analysis.Analyze(ctx, upload)
	if err != nil {
		in.log.Warn("Analysis of %s failed: %v", path, err)
		in.mu.Lock()
		delete(in.seen, key)
		in.mu.Unlock()
		return &Result{Path: path, Err: err}
	}
	in.log.Info("Analysed %s as %s (%d clauses, %s risk)",
		path, analysis.ID, len(analysis.Clauses), analysis.OverallRisk())
	return &Result{Path: path, Analysis: analysis}
}
