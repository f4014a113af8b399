package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/petroldesk/pumplog/constants"
	"github.com/petroldesk/pumplog/internal/common"
)

// Store keeps uploaded receipt images on the local filesystem under a single
// root, named by content hash so duplicate uploads collapse to one object.
// Refs are opaque to callers; ResolvePath exists because the recognition
// engine needs a real file path.
type Store struct {
	root   string
	logger *slog.Logger
}

var refPattern = regexp.MustCompile(`^[a-f0-9]{64}(\.[a-z0-9]+)?$`)

func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("blob store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: root, logger: logger}, nil
}

// Put stores data and returns its ref. The ref embeds the extension derived
// from the content type so stored objects keep a recognizable suffix.
func (s *Store) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", common.Validationf("receipt", "empty upload")
	}

	sum := sha256.Sum256(data)
	ref := hex.EncodeToString(sum[:]) + extForContentType(contentType)
	path := filepath.Join(s.root, ref)

	if _, err := os.Stat(path); err == nil {
		s.logger.Debug("blob already stored", "ref", ref)
		return ref, nil
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("stage blob: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("commit blob: %w", err)
	}

	s.logger.Info("blob stored", "ref", ref, "bytes", len(data))
	return ref, nil
}

// ResolvePath maps a ref to a local file path, or ErrNotFound when the blob
// does not exist. The ref is validated before touching the filesystem so a
// crafted ref cannot escape the root.
func (s *Store) ResolvePath(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !refPattern.MatchString(ref) {
		return "", fmt.Errorf("blob ref %q: %w", ref, common.ErrNotFound)
	}
	path := filepath.Join(s.root, ref)
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return "", fmt.Errorf("blob ref %q: %w", ref, common.ErrNotFound)
	}
	return path, nil
}

// Delete removes a stored blob. Missing blobs are not an error; deletion is
// best-effort cleanup after a receipt is removed.
func (s *Store) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !refPattern.MatchString(ref) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.root, ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func extForContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	switch ct {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(ct); err == nil && len(exts) > 0 {
		if e := constants.NormalizeExt(exts[0]); constants.IsAllowedExtension(e) {
			return "." + e
		}
	}
	return ""
}
