package index

import (
	"path"
	"time"

	"github.com/lexandro/davsearch-mcp/filetype"
	"github.com/lexandro/davsearch-mcp/store"
)

// FileMetadata is one entry of an index snapshot. Path is unique within a snapshot.
type FileMetadata struct {
	Path         string    // Absolute store path
	Name         string    // Base name
	Size         int64     // Bytes, 0 for directories
	LastModified time.Time // Zero when the store did not report it
	MimeType     string
	Extension    string // Lowercase, no leading dot
	IsDirectory  bool
	Depth        int // Levels below the base path; direct children are 0
}

// NewFileMetadata builds a record from a listing entry. A missing content type
// is guessed from the extension.
func NewFileMetadata(entry store.Entry, depth int) *FileMetadata {
	storePath := store.CleanPath(entry.Path)
	name := entry.Name
	if name == "" {
		name = path.Base(storePath)
	}

	metadata := &FileMetadata{
		Path:         storePath,
		Name:         name,
		LastModified: entry.LastModified,
		IsDirectory:  entry.IsDirectory,
		Depth:        depth,
	}
	if entry.IsDirectory {
		return metadata
	}

	metadata.Size = max(entry.Size, 0)
	metadata.Extension = filetype.NormalizeExtension(path.Ext(name))
	metadata.MimeType = entry.ContentType
	if metadata.MimeType == "" {
		metadata.MimeType = filetype.MIMEForExtension(metadata.Extension)
	}
	return metadata
}

// Category classifies the file for extraction. Directories are always Unknown.
func (m *FileMetadata) Category() filetype.Category {
	if m.IsDirectory {
		return filetype.Unknown
	}
	return filetype.Classify(m.MimeType, m.Extension)
}
