// Package filesystem reads documents from local disk and watches inbox
// directories for new ones.
package filesystem

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// sniffLen is how many leading bytes are inspected when the extension is unknown.
const sniffLen = 512

// ReadUpload loads a file from disk as a pipeline upload.
// Size and type limits are enforced by the analysis service, not here.
func ReadUpload(path string) (domain.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.Upload{}, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return domain.Upload{
		Filename:  filepath.Base(path),
		MimeType:  DetectMIMEType(path, data),
		Data:      data,
		SourceRef: "file://" + abs,
	}, nil
}

// DetectMIMEType resolves a mime type from the extension, falling back to
// content sniffing. Parameters such as charset are stripped.
func DetectMIMEType(filename string, data []byte) string {
	ext := filepath.Ext(filename)
	if m := domain.MimeTypeForExtension(ext); m != "" {
		return m
	}
	if ext != "" {
		if m := mime.TypeByExtension(strings.ToLower(ext)); m != "" {
			return stripParams(m)
		}
	}
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return stripParams(http.DetectContentType(data))
}

func stripParams(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(m)
}

// IsHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func IsHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
