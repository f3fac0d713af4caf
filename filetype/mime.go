package filetype

import (
	"mime"
	"strings"
)

var extensionMIME = map[string]string{
	"txt": "text/plain", "md": "text/markdown", "markdown": "text/markdown", "csv": "text/csv",
	"log": "text/plain", "rst": "text/x-rst", "tex": "text/x-tex",
	"json": "application/json", "yaml": "application/x-yaml", "yml": "application/x-yaml",
	"toml": "application/toml", "xml": "application/xml", "ini": "text/plain", "env": "text/plain",
	"ics": "text/calendar", "vcf": "text/vcard",
	"go": "text/x-go", "py": "text/x-python", "js": "text/javascript", "ts": "application/typescript",
	"java": "text/x-java", "c": "text/x-c", "h": "text/x-c", "cpp": "text/x-c++", "sh": "application/x-sh",
	"html": "text/html", "htm": "text/html", "css": "text/css", "sql": "application/sql",
	"pdf": "application/pdf", "doc": "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"odt":  "application/vnd.oasis.opendocument.text", "rtf": "application/rtf",
	"png": "image/png", "jpg": "image/jpeg", "jpeg": "image/jpeg", "gif": "image/gif",
	"webp": "image/webp", "svg": "image/svg+xml", "heic": "image/heic",
	"mp3": "audio/mpeg", "wav": "audio/wav", "flac": "audio/flac", "m4a": "audio/mp4",
	"mp4": "video/mp4", "mov": "video/quicktime", "mkv": "video/x-matroska", "webm": "video/webm",
	"zip": "application/zip", "gz": "application/gzip", "tar": "application/x-tar",
}

// MIMEForExtension guesses a MIME type for servers that omit getcontenttype.
// Returns application/octet-stream when nothing is known.
func MIMEForExtension(extension string) string {
	extension = NormalizeExtension(extension)
	if extension == "" {
		return "application/octet-stream"
	}
	if mimeType, ok := extensionMIME[extension]; ok {
		return mimeType
	}
	if mimeType := mime.TypeByExtension("." + extension); mimeType != "" {
		return baseMIME(mimeType)
	}
	return "application/octet-stream"
}

var mimeDescriptions = map[string]string{
	"text/plain":         "plain text",
	"text/markdown":      "markdown text",
	"text/csv":           "csv spreadsheet data",
	"text/html":          "html web page",
	"text/calendar":      "calendar event",
	"text/vcard":         "contact card",
	"application/json":   "json data",
	"application/xml":    "xml data",
	"application/pdf":    "pdf document",
	"application/msword": "word document",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "word document",
	"application/vnd.ms-excel":                                                  "excel spreadsheet",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "excel spreadsheet",
	"application/vnd.ms-powerpoint":                                             "powerpoint presentation",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "powerpoint presentation",
	"application/vnd.oasis.opendocument.text":                                   "opendocument text",
	"application/rtf":  "rich text document",
	"application/zip":  "zip archive",
	"application/gzip": "gzip archive",
}

// Describe returns a human-readable description of a file type, e.g. "pdf document" or "Go source code".
func Describe(mimeType string, extension string) string {
	base := baseMIME(mimeType)
	if description, ok := mimeDescriptions[base]; ok {
		return description
	}

	if language, ok := extensionToLanguage[NormalizeExtension(extension)]; ok && Classify(mimeType, extension) == Code {
		return language + " source code"
	}

	switch {
	case strings.HasPrefix(base, "image/"):
		return strings.TrimPrefix(base, "image/") + " image"
	case strings.HasPrefix(base, "audio/"):
		return strings.TrimPrefix(base, "audio/") + " audio"
	case strings.HasPrefix(base, "video/"):
		return strings.TrimPrefix(base, "video/") + " video"
	}

	category := Classify(mimeType, extension)
	switch category {
	case Media:
		return "media file"
	case Unknown:
		return "file"
	default:
		return category.String() + " file"
	}
}
