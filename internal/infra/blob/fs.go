package blob

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/docutrust/docutrust/internal/domain"
)

// FSStore keeps uploaded files on the local disk, one file per document id.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) Put(ctx context.Context, key string, data []byte) error {
	return os.WriteFile(s.path(key), data, 0o644)
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFoundError{Resource: "file"}
		}
		return nil, err
	}
	return data, nil
}

func (s *FSStore) path(key string) string {
	// keys are server-generated uuids; Base guards against traversal anyway
	return filepath.Join(s.root, filepath.Base(key))
}
