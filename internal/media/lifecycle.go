// Package media manages the local spool files backing pending
// attachments. A spooled file lives exactly as long as at least one
// handle on it is held: the compose session holds one while the user is
// editing, and the message log retains its own when a message carrying
// the attachment is appended.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Manager writes attachment bytes into a spool directory and tracks how
// many handles reference each file.
type Manager struct {
	dir string

	mu   sync.Mutex
	refs map[string]int
}

// NewManager creates the spool directory if needed. An empty dir falls
// back to a subdirectory of the system temp dir.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "shapechat-spool")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Manager{dir: dir, refs: make(map[string]int)}, nil
}

// Acquire spools data to a new file and returns a live handle on it.
func (m *Manager) Acquire(name string, data []byte) (*Handle, error) {
	f, err := os.CreateTemp(m.dir, "attach-*"+safeExt(name))
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close spool file: %w", err)
	}

	m.mu.Lock()
	m.refs[f.Name()] = 1
	m.mu.Unlock()

	return &Handle{m: m, path: f.Name()}, nil
}

// Live returns the number of spool files still referenced.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refs)
}

// Close removes every referenced spool file. Handles released afterwards
// remain no-ops.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path := range m.refs {
		os.Remove(path)
	}
	m.refs = make(map[string]int)
}

// Handle is a revocable reference to one spooled file. Release is
// idempotent per handle; the file is deleted when its last handle is
// released.
type Handle struct {
	m        *Manager
	path     string
	released atomic.Bool
}

// Path returns the location of the spooled file.
func (h *Handle) Path() string { return h.path }

// Retain returns a new independent handle on the same spool file,
// keeping the file alive after this handle is released. Returns nil if
// this handle was already released.
func (h *Handle) Retain() *Handle {
	if h == nil || h.released.Load() {
		return nil
	}
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if _, ok := h.m.refs[h.path]; !ok {
		return nil
	}
	h.m.refs[h.path]++
	return &Handle{m: h.m, path: h.path}
}

// Release drops this handle's reference. Calling it again is a no-op.
func (h *Handle) Release() {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}
	h.m.mu.Lock()
	remaining, ok := h.m.refs[h.path]
	if ok {
		remaining--
		if remaining <= 0 {
			delete(h.m.refs, h.path)
		} else {
			h.m.refs[h.path] = remaining
		}
	}
	h.m.mu.Unlock()

	if ok && remaining <= 0 {
		os.Remove(h.path)
	}
}

// safeExt keeps the original file extension on the spool file so MIME
// sniffing and debugging stay readable, stripping anything suspicious.
func safeExt(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
