// Package filetype classifies store files by MIME type and extension.
package filetype

import (
	"strings"
)

// Category is the handling class of a file.
type Category int

const (
	Unknown Category = iota
	Text
	Code
	Config
	Document
	Media
)

func (c Category) String() string {
	switch c {
	case Text:
		return "text"
	case Code:
		return "code"
	case Config:
		return "config"
	case Document:
		return "document"
	case Media:
		return "media"
	default:
		return "unknown"
	}
}

// Extractable reports whether files of this category carry searchable text content.
func (c Category) Extractable() bool {
	return c == Text || c == Code || c == Config
}

// extensionCategories covers the extensions that are not programming languages.
// Languages come from extensionToLanguage and always classify as Code.
var extensionCategories = map[string]Category{
	// Text
	"txt": Text, "text": Text, "md": Text, "mdx": Text, "markdown": Text, "rst": Text,
	"csv": Text, "tsv": Text, "log": Text, "tex": Text, "adoc": Text, "org": Text,
	"srt": Text, "vtt": Text,
	// Config / data
	"json": Config, "jsonc": Config, "yaml": Config, "yml": Config, "toml": Config,
	"xml": Config, "ini": Config, "env": Config, "properties": Config, "conf": Config,
	"cfg": Config, "plist": Config, "ics": Config, "vcf": Config,
	// Documents
	"pdf": Document, "doc": Document, "docx": Document, "xls": Document, "xlsx": Document,
	"ppt": Document, "pptx": Document, "odt": Document, "ods": Document, "odp": Document,
	"rtf": Document, "epub": Document, "pages": Document, "numbers": Document, "key": Document,
	// Media
	"png": Media, "jpg": Media, "jpeg": Media, "gif": Media, "bmp": Media, "webp": Media,
	"tif": Media, "tiff": Media, "heic": Media, "ico": Media, "raw": Media,
	"mp3": Media, "wav": Media, "flac": Media, "ogg": Media, "m4a": Media, "aac": Media,
	"mp4": Media, "mov": Media, "avi": Media, "mkv": Media, "webm": Media, "wmv": Media,
}

// Classify maps a MIME type and extension to a Category. The MIME type wins
// whenever it is specific enough to decide; the extension is the fallback.
func Classify(mimeType string, extension string) Category {
	if category, ok := classifyMIME(mimeType); ok {
		return category
	}
	return classifyExtension(extension)
}

func classifyMIME(mimeType string) (Category, bool) {
	mimeType = baseMIME(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		return Unknown, false
	}

	switch mimeType {
	case "application/json", "application/xml", "text/xml", "application/x-yaml", "application/yaml",
		"text/yaml", "application/toml", "text/calendar", "text/vcard", "text/x-vcard":
		return Config, true
	case "application/javascript", "text/javascript", "application/typescript", "application/x-sh",
		"application/x-python", "text/x-python", "text/x-go", "text/x-java", "text/x-c", "text/x-c++",
		"application/sql", "text/x-shellscript", "application/x-httpd-php", "text/css", "text/html":
		return Code, true
	case "application/pdf", "application/msword", "application/rtf", "application/epub+zip",
		"application/vnd.ms-excel", "application/vnd.ms-powerpoint":
		return Document, true
	}

	switch {
	case strings.HasPrefix(mimeType, "application/vnd.openxmlformats-officedocument."),
		strings.HasPrefix(mimeType, "application/vnd.oasis.opendocument."):
		return Document, true
	case strings.HasPrefix(mimeType, "image/"),
		strings.HasPrefix(mimeType, "audio/"),
		strings.HasPrefix(mimeType, "video/"):
		return Media, true
	case strings.HasPrefix(mimeType, "text/x-"):
		return Code, true
	case strings.HasPrefix(mimeType, "text/"):
		return Text, true
	case strings.HasSuffix(mimeType, "+json"), strings.HasSuffix(mimeType, "+xml"):
		return Config, true
	}
	return Unknown, false
}

func classifyExtension(extension string) Category {
	extension = NormalizeExtension(extension)
	if extension == "" {
		return Unknown
	}
	if category, ok := extensionCategories[extension]; ok {
		return category
	}
	if _, ok := extensionToLanguage[extension]; ok {
		return Code
	}
	return Unknown
}

// IsExtractable reports whether a file with this MIME type and extension has searchable text.
func IsExtractable(mimeType string, extension string) bool {
	return Classify(mimeType, extension).Extractable()
}

// NormalizeExtension lowercases and strips a leading dot.
func NormalizeExtension(extension string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
}

// baseMIME drops parameters such as "; charset=utf-8".
func baseMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
