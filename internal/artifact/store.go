package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storyweaver/internal/domain"
)

// ErrInvalidRef - the reference does not name a stored artifact.
var ErrInvalidRef = errors.New("invalid artifact reference")

// Store resolves opaque artifact references to bytes on demand. A reference
// is the artifact's base file name; callers never see absolute paths except
// through Path, which exists for tools (ffmpeg) that need real files.
type Store interface {
	// Put stores the artifact bytes and returns its reference.
	Put(kind string, ext string, data []byte) (string, error)
	// Open returns a reader over the artifact bytes and their size.
	Open(ref string) (io.ReadCloser, int64, error)
	// Path returns the on-disk location of the artifact.
	Path(ref string) (string, error)
}

// Compile-time check to ensure fileStore implements Store
var _ Store = (*fileStore)(nil)

// fileStore keeps artifacts as flat files under a single root directory.
type fileStore struct {
	root   string
	logger *zap.Logger
}

// NewFileStore creates the artifact directory if needed and returns a Store
// rooted at it.
func NewFileStore(root string, logger *zap.Logger) (Store, error) {
	if root == "" {
		return nil, errors.New("artifact root directory is not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &fileStore{root: root, logger: logger}, nil
}

func (s *fileStore) Put(kind string, ext string, data []byte) (string, error) {
	ref := fmt.Sprintf("%s-%s.%s", kind, uuid.NewString(), strings.TrimPrefix(ext, "."))
	path := filepath.Join(s.root, ref)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("Failed to save artifact", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to save artifact: %w", err)
	}

	s.logger.Info("Artifact saved",
		zap.String("kind", kind),
		zap.String("ref", ref),
		zap.Int("size_bytes", len(data)),
	)
	return ref, nil
}

func (s *fileStore) Open(ref string) (io.ReadCloser, int64, error) {
	path, err := s.Path(ref)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, domain.ErrArtifactNotFound
		}
		return nil, 0, fmt.Errorf("failed to open artifact %s: %w", ref, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat artifact %s: %w", ref, err)
	}
	return f, info.Size(), nil
}

// Path validates the reference against traversal and maps it into the root.
func (s *fileStore) Path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", ErrInvalidRef
	}
	return filepath.Join(s.root, ref), nil
}
