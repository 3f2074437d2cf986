package cleaner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/logging"
	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/security"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// Result is the outcome of deleting one target.
type Result struct {
	BytesFreed int64
	Errors     int
	// Failures holds one entry per counted error.
	Failures []*DeletionError
}

func (r *Result) fail(err *DeletionError) {
	r.Errors++
	r.Failures = append(r.Failures, err)
}

// Executor deletes or shreds single targets. Sentinel targets are handed to
// the platform; everything else goes through the path validator first.
type Executor struct {
	sys       platform.System
	validator *security.PathValidator
	logger    *logging.Logger

	shredBytes      int64
	sentinelSize    int64
	retryMaxElapsed time.Duration

	remove   func(string) error
	preserve map[string]bool

	rngMu sync.Mutex
	rng   *rand.ChaCha8
}

// NewExecutor creates an executor from the clean settings of cfg.
func NewExecutor(cfg *config.Config, sys platform.System, validator *security.PathValidator, logger *logging.Logger) *Executor {
	if validator == nil {
		validator = security.NewPathValidator()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	var seed [32]byte
	for i := 0; i < len(seed); i += 8 {
		v := rand.Uint64()
		for j := 0; j < 8; j++ {
			seed[i+j] = byte(v >> (8 * j))
		}
	}

	return &Executor{
		sys:             sys,
		validator:       validator,
		logger:          logger,
		shredBytes:      cfg.Clean.ShredBytes.Int64(),
		sentinelSize:    cfg.Clean.SentinelSize.Int64(),
		retryMaxElapsed: cfg.Clean.RetryMaxElapsed,
		remove:          os.Remove,
		preserve:        make(map[string]bool),
		rng:             rand.NewChaCha8(seed),
	}
}

// SetRemover replaces the function used to remove a single file or empty
// directory.
func (e *Executor) SetRemover(fn func(string) error) {
	e.remove = fn
}

// PreserveRoot marks a folder whose contents are deleted but which itself
// is kept, such as %TEMP%.
func (e *Executor) PreserveRoot(path string) {
	if path == "" {
		return
	}
	e.preserve[preserveKey(path)] = true
}

func preserveKey(p string) string {
	return strings.ToLower(filepath.Clean(p))
}

// Delete removes path recursively and reports the bytes freed and the
// number of failures. It never returns an error; failures are counted.
func (e *Executor) Delete(path string) Result {
	return e.run(context.Background(), path, false)
}

// Shred overwrites the head of every file under path with random bytes
// before removing it. This is best effort and is not a secure erase: SSDs,
// journaling and shadow copies may keep the original data.
func (e *Executor) Shred(path string) Result {
	return e.run(context.Background(), path, true)
}

// ShredNotice is the warning shown before a shred of n bytes per file.
func ShredNotice(n int64) string {
	return fmt.Sprintf("Shred is a best-effort overwrite of the first %s of each file, not a secure erase.", utils.FormatBytes(n))
}

// DeleteContext is Delete with cancellation between files.
func (e *Executor) DeleteContext(ctx context.Context, path string) Result {
	return e.run(ctx, path, false)
}

// ShredContext is Shred with cancellation between files.
func (e *Executor) ShredContext(ctx context.Context, path string) Result {
	return e.run(ctx, path, true)
}

func (e *Executor) run(ctx context.Context, path string, shred bool) Result {
	var res Result

	if platform.IsSentinel(path) {
		if err := e.sentinel(path); err != nil {
			e.logger.Warn("%s failed: %v", path, err)
			res.fail(CategorizeError(path, err))
			return res
		}
		res.BytesFreed = e.sentinelSize
		return res
	}

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return res
		}
		res.fail(CategorizeError(path, err))
		return res
	}

	if err := e.validator.ValidatePathForDeletion(path); err != nil {
		e.logger.Warn("refusing %s: %v", path, err)
		res.fail(&DeletionError{Path: path, Reason: ErrorProtectedPath, Original: err})
		return res
	}
	if err := IsSafeToDelete(path); err != nil {
		res.fail(&DeletionError{Path: path, Reason: ErrorInvalidPath, Original: err})
		return res
	}

	if !info.IsDir() || isLink(path, info.Mode()) {
		e.removeFile(ctx, path, info, shred, &res)
		return res
	}

	e.removeTree(ctx, path, shred, &res)
	return res
}

func (e *Executor) sentinel(token string) error {
	if e.sys == nil {
		return &platform.PlatformError{Op: token, Err: platform.ErrUnsupported}
	}
	switch token {
	case platform.SentinelRecycleBin:
		return e.sys.EmptyRecycleBin()
	case platform.SentinelClipboard:
		return e.sys.ClearClipboard()
	case platform.SentinelNetworkTrace:
		return e.sys.FlushNetworkTrace()
	case platform.SentinelCredentialVault:
		return e.sys.ClearCredentialVault()
	}
	return &platform.PlatformError{Op: token, Err: platform.ErrUnsupported}
}

// removeTree deletes files in walk order, then removes directories deepest
// first. Directory removal failures are not counted: a directory that still
// holds a failed file cannot be removed and that file was already counted.
func (e *Executor) removeTree(ctx context.Context, root string, shred bool, res *Result) {
	dirs := []string{root}
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil && len(entries) == 0 {
			res.fail(&DeletionError{Path: dir, Reason: ErrorUnreadableDir, Original: err})
			continue
		}

		for _, d := range entries {
			if ctx.Err() != nil {
				return
			}

			full := filepath.Join(dir, d.Name())
			if d.IsDir() && !isLink(full, d.Type()) {
				dirs = append(dirs, full)
				stack = append(stack, full)
				continue
			}

			info, err := d.Info()
			if err != nil {
				if !os.IsNotExist(err) {
					res.fail(CategorizeError(full, err))
				}
				continue
			}
			e.removeFile(ctx, full, info, shred, res)
		}
	}

	last := 0
	if e.preserve[preserveKey(root)] {
		last = 1
	}
	for i := len(dirs) - 1; i >= last; i-- {
		if err := e.remove(dirs[i]); err != nil && !os.IsNotExist(err) {
			e.logger.Debug("rmdir %s: %v", dirs[i], err)
		}
	}
}

// removeFile removes one non-directory entry. Links are removed without
// touching their target and free no bytes.
func (e *Executor) removeFile(ctx context.Context, path string, info fs.FileInfo, shred bool, res *Result) {
	regular := info.Mode().IsRegular()
	if shred && regular {
		if err := e.overwrite(path, info.Size()); err != nil {
			e.logger.Debug("overwrite %s: %v", path, err)
		}
	}

	if err := e.removeWithRetry(ctx, path); err != nil {
		e.logger.Debug("remove %s: %v", path, err)
		res.fail(err)
		return
	}
	if regular {
		res.BytesFreed += info.Size()
	}
}

// removeWithRetry retries files held open by another process with
// exponential backoff. Other failures are returned at once.
func (e *Executor) removeWithRetry(ctx context.Context, path string) *DeletionError {
	var b backoff.BackOff = &backoff.StopBackOff{}
	if e.retryMaxElapsed > 0 {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 50 * time.Millisecond
		bo.MaxElapsedTime = e.retryMaxElapsed
		b = bo
	}

	err := backoff.Retry(func() error {
		err := e.remove(path)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		if os.IsPermission(err) && clearReadOnly(path) {
			if err = e.remove(path); err == nil {
				return nil
			}
		}
		delErr := CategorizeError(path, err)
		if !delErr.Retryable {
			return backoff.Permanent(delErr)
		}
		return delErr
	}, backoff.WithContext(b, ctx))
	if err == nil {
		return nil
	}

	var delErr *DeletionError
	if errors.As(err, &delErr) {
		return delErr
	}
	return CategorizeError(path, err)
}

// clearReadOnly makes a read-only file writable so it can be removed.
// It reports whether the mode was changed.
func clearReadOnly(path string) bool {
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0200 != 0 {
		return false
	}
	return os.Chmod(path, info.Mode().Perm()|0200) == nil
}

// overwrite replaces the first shredBytes of path with random data and
// flushes it to disk.
func (e *Executor) overwrite(path string, size int64) error {
	n := size
	if e.shredBytes > 0 && n > e.shredBytes {
		n = e.shredBytes
	}
	if n <= 0 {
		return nil
	}

	clearReadOnly(path)
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	var written int64
	for written < n {
		chunk := buf
		if rem := n - written; rem < int64(len(chunk)) {
			chunk = chunk[:rem]
		}
		e.fill(chunk)
		w, err := f.Write(chunk)
		written += int64(w)
		if err != nil {
			return err
		}
		if w == 0 {
			return io.ErrShortWrite
		}
	}
	return f.Sync()
}

func (e *Executor) fill(p []byte) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng.Read(p)
}

// isLink reports whether path must be removed as a link rather than walked.
func isLink(path string, mode fs.FileMode) bool {
	if mode&(fs.ModeSymlink|fs.ModeIrregular) != 0 {
		return true
	}
	return mode.IsDir() && platform.IsReparsePoint(path)
}
