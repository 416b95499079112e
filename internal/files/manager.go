package files

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"csvdesk/internal/config"
)

// Rejection reasons for uploads. Both are user errors, not system failures.
var (
	ErrEmptyFilename       = errors.New("empty filename")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
)

// Manager stores uploaded files on disk.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewManager creates a new upload manager.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// Save writes an upload into the upload directory. The client filename is
// sanitized and checked against the allowed-extension set; name collisions
// are resolved with a short random suffix. Returns the stored filename and
// its path on disk. The payload size cap is enforced at the request level,
// not here.
func (m *Manager) Save(filename string, r io.Reader) (string, string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", "", ErrEmptyFilename
	}
	if !m.cfg.AllowedExtension(name) {
		return "", "", fmt.Errorf("%w: %s", ErrExtensionNotAllowed, filepath.Ext(name))
	}

	path := filepath.Join(m.cfg.Upload.Dir, name)
	if _, err := os.Stat(path); err == nil {
		name = collisionName(name)
		path = filepath.Join(m.cfg.Upload.Dir, name)
	}

	if err := m.write(path, r); err != nil {
		return "", "", err
	}

	m.logger.Info("upload stored",
		slog.String("filename", name),
		slog.String("path", path))

	return name, path, nil
}

// write streams the upload to a temp file in the target directory, then
// renames it into place so concurrent readers never see a partial file.
func (m *Manager) write(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close upload: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move upload into place: %w", err)
	}
	return nil
}

// Exists checks whether the stored file is still present and readable.
func (m *Manager) Exists(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// unsafeChars matches everything a stored filename may not contain.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeFilename reduces a client-supplied filename to a safe basename:
// path components are stripped and disallowed characters collapse to
// underscores. Returns "" when nothing usable remains.
func SanitizeFilename(filename string) string {
	// Strip any path components, from either path convention.
	name := filepath.Base(filepath.ToSlash(filename))
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}

// collisionName appends a short random suffix before the extension.
func collisionName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s%s", base, uuid.New().String()[:8], ext)
}
