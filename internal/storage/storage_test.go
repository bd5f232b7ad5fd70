package storage_test

import (
	"regexp"
	"testing"
	"time"

	"catalog/internal/storage"

	"github.com/stretchr/testify/assert"
)

func TestUniqueName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		filename string
		suffix   string
	}{
		{"photo.jpg", "photo.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\front view.png`, "front_view.png"},
		{"", "file"},
		{"..", "file"},
		{"ünïcode.webp", "n_code.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			name := storage.UniqueName(now, tt.filename)
			assert.Regexp(t, regexp.MustCompile(`^1700000000123-[0-9a-f]{8}-`+regexp.QuoteMeta(tt.suffix)+`$`), name)
		})
	}
}

func TestUniqueName_SameInstantSameFile(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, storage.UniqueName(now, "a.jpg"), storage.UniqueName(now, "a.jpg"))
}
