package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
)

// pidfileName is the well-known lock file name inside the repository,
// spec.md §6: "<repo>/gc.pid".
const pidfileName = "gc.pid"

// staleWindow bounds how long a prior lock may delay a manual run before it
// is considered abandoned, spec.md §4.8 and §5.
const staleWindow = 12 * time.Hour

// ErrLocked is returned by Acquire when a live competing lock holds the
// repository and Auto was not requested.
var ErrLocked = errors.New("housekeeping: repository is locked by another process")

// Lock represents a held gc.pid advisory lock. The zero value is not
// usable; obtain one via Acquire.
type Lock struct {
	path     string
	pid      int
	hostname string
	cancel   context.CancelFunc
}

// AcquireOptions controls Acquire's behavior on a pre-existing lock.
type AcquireOptions struct {
	// Force bypasses the staleness/liveness check entirely and always
	// acquires, matching gc.c's --force.
	Force bool
	// Auto, when true, makes a live competing lock a silent no-acquire
	// (Acquire returns nil, nil) instead of an error, matching gc.c's
	// --auto behavior of exiting 0 having done nothing.
	Auto bool
}

// Acquire takes the advisory lock at repoPath/gc.pid, following
// spec.md §4.8 / original_source/builtin/gc.c's lock_repo_for_gc:
//
//  1. Exclusively create a temporary lock file; failure here is fatal.
//  2. Unless Force, read any pre-existing pidfile's (pid, hostname) and
//     mtime. Decline (rolling back the temp file) iff all of: the file is
//     no older than 12 hours, it parses cleanly, and either the recorded
//     hostname differs from the local host, or the recorded pid is still
//     live.
//  3. Otherwise, write "<pid> <hostname>\n" and commit the lock file, and
//     register a signal handler that removes the pidfile and re-raises the
//     signal.
//
// Acquire returns (nil, nil) when Auto is set and a live lock was found
// (matching gc.c's auto-mode silent success), (nil, ErrLocked) when a live
// lock was found and Auto was not set, and (nil, err) on any other failure.
func Acquire(ctx context.Context, repoPath string, opts AcquireOptions) (*Lock, error) {
	path := filepath.Join(repoPath, pidfileName)
	tmp := path + ".lock"

	fd, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create lock file %s: %w", tmp, err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	if !opts.Force {
		if holder, live, ok := readLiveHolder(path, hostname); ok {
			if live {
				fd.Close()
				os.Remove(tmp)
				if opts.Auto {
					return nil, nil
				}
				return nil, fmt.Errorf("%w: held by pid %d on %s", ErrLocked, holder.pid, holder.hostname)
			}
		}
	}

	pid := os.Getpid()
	if _, err := fmt.Fprintf(fd, "%d %s\n", pid, hostname); err != nil {
		fd.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	if err := fd.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("commit lock file: %w", err)
	}

	l := &Lock{path: path, pid: pid, hostname: hostname}
	l.registerSignalCleanup(ctx)
	return l, nil
}

type holderInfo struct {
	pid      int
	hostname string
}

// readLiveHolder reads the current pidfile at path, if any, and reports
// whether its holder should be treated as still live per spec.md §4.8.
// ok is false when there was no pidfile, or it could not be parsed (in
// which case Acquire proceeds to take the lock, mirroring gc.c treating a
// malformed/missing pidfile as "no one holds it").
func readLiveHolder(path, localHost string) (holder holderInfo, live bool, ok bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return holderInfo{}, false, false
	}
	if time.Since(fi.ModTime()) > staleWindow {
		return holderInfo{}, false, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return holderInfo{}, false, false
	}
	pid, hostname, err := parsePidfile(string(data))
	if err != nil {
		return holderInfo{}, false, false
	}

	holder = holderInfo{pid: pid, hostname: hostname}
	if hostname != localHost {
		// Be gentle to concurrent runs on remote hosts: we cannot
		// probe their pid, so assume it is still live.
		return holder, true, true
	}
	return holder, pidIsLive(pid), true
}

func parsePidfile(s string) (pid int, hostname string, err error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return 0, "", fmt.Errorf("malformed lock file")
	}
	pid, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", fmt.Errorf("malformed lock file pid: %w", err)
	}
	return pid, fields[1], nil
}

// pidIsLive reports whether pid names a process we believe is still
// running: signal 0 either succeeds or fails with EPERM (process exists,
// we just can't signal it), per spec.md §4.8's kill(pid, 0) check.
func pidIsLive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// registerSignalCleanup arranges for Release to run, unlinking the pidfile,
// when the process receives a terminating signal, then re-raises the
// signal so the process still exits the way it normally would (spec.md
// §4.8's "re-raising the signal after cleanup").
func (l *Lock) registerSignalCleanup(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})
	l.cancel = func() { close(done) }

	go func() {
		select {
		case sig := <-ch:
			signal.Stop(ch)
			l.Release(ctx)
			proc, err := os.FindProcess(os.Getpid())
			if err == nil {
				_ = proc.Signal(sig)
			}
		case <-done:
			signal.Stop(ch)
		}
	}()
}

// Release removes the lock file, but only after re-reading it and
// confirming it still names this process: spec.md §9's "signal cleanup
// race" resolution. A lock acquired with Force by a second process on the
// same host therefore cannot delete a third process's still-valid lock.
func (l *Lock) Release(ctx context.Context) {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return
	}
	pid, hostname, err := parsePidfile(string(data))
	if err != nil {
		clog.FromContext(ctx).Warn("lock file contents unreadable at release, leaving in place", "path", l.path)
		return
	}
	if pid != l.pid || hostname != l.hostname {
		clog.FromContext(ctx).Warn("lock file no longer names this process, not removing", "path", l.path)
		return
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		clog.FromContext(ctx).Warn("failed to remove lock file", "path", l.path, "error", err)
	}
}

