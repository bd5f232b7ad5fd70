// Package storage writes product attachments and maps them to public paths.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AttachmentStore persists uploaded files under caller-chosen names.
type AttachmentStore interface {
	// Save writes r under name and returns the path clients use to fetch it.
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Remove deletes the file stored under name.
	Remove(ctx context.Context, name string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UniqueName builds a storage name from the upload time and the original
// filename: "<unix-millis>-<8 hex>-<base name>". Directory components and
// characters outside [A-Za-z0-9._-] are stripped from the original name.
func UniqueName(now time.Time, filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.NewString()[:8], base)
}

// validName rejects names that would escape the storage root.
func validName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid attachment name %q", name)
	}
	return nil
}
