package audit

import (
	"path/filepath"
	"strings"
)

// FileMeta is the caller-supplied description of an attached file. Path is
// accepted for caller convenience but is never persisted: files move and
// expire, only provenance metadata is durable.
type FileMeta struct {
	Name string
	Size int64
	Mime string
	Path string
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
	".svg":  {},
}

var imageMimes = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/gif":     {},
	"image/webp":    {},
	"image/bmp":     {},
	"image/svg+xml": {},
}

func isImage(f FileMeta) bool {
	if _, ok := imageMimes[strings.ToLower(f.Mime)]; ok {
		return true
	}
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(f.Name))]
	return ok
}

// fileItems reduces file metadata to durable related items. Storage paths and
// URLs are dropped here.
func fileItems(action string, files []FileMeta, category string) []RelatedItem {
	items := make([]RelatedItem, 0, len(files))
	for _, f := range files {
		items = append(items, RelatedItem{
			Type:     "file",
			Name:     f.Name,
			Size:     f.Size,
			Mime:     f.Mime,
			IsImage:  isImage(f),
			Category: category,
			Action:   action,
		})
	}
	return items
}
