package filetype

import "testing"

func Test_Classify_MIMETakesPriority(t *testing.T) {
	// A .txt extension served as a PDF is a document
	if got := Classify("application/pdf", "txt"); got != Document {
		t.Errorf("expected document, got %s", got)
	}
	if got := Classify("text/plain; charset=utf-8", "pdf"); got != Text {
		t.Errorf("expected text, got %s", got)
	}
}

func Test_Classify_FallsBackToExtension(t *testing.T) {
	cases := map[string]Category{
		"go":   Code,
		"PY":   Code,
		".md":  Text,
		"yaml": Config,
		"docx": Document,
		"jpeg": Media,
		"xyz":  Unknown,
		"":     Unknown,
	}
	for ext, expected := range cases {
		if got := Classify("", ext); got != expected {
			t.Errorf("Classify(%q): expected %s, got %s", ext, expected, got)
		}
		if got := Classify("application/octet-stream", ext); got != expected {
			t.Errorf("Classify(octet-stream, %q): expected %s, got %s", ext, expected, got)
		}
	}
}

func Test_Classify_MIMEFamilies(t *testing.T) {
	cases := map[string]Category{
		"image/png":        Media,
		"video/mp4":        Media,
		"audio/mpeg":       Media,
		"text/x-rust":      Code,
		"text/csv":         Text,
		"application/json": Config,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": Document,
		"application/ld+json": Config,
		"application/zip":     Unknown,
	}
	for mimeType, expected := range cases {
		if got := Classify(mimeType, ""); got != expected {
			t.Errorf("Classify(%q): expected %s, got %s", mimeType, expected, got)
		}
	}
}

func Test_Category_Extractable(t *testing.T) {
	for _, c := range []Category{Text, Code, Config} {
		if !c.Extractable() {
			t.Errorf("expected %s to be extractable", c)
		}
	}
	for _, c := range []Category{Document, Media, Unknown} {
		if c.Extractable() {
			t.Errorf("expected %s to be metadata-only", c)
		}
	}
}

func Test_Language_Detection(t *testing.T) {
	if lang := Language("/src/components/App.tsx"); lang != "TypeScript" {
		t.Errorf("expected TypeScript, got %s", lang)
	}
	if lang := Language("/build/Makefile"); lang != "Makefile" {
		t.Errorf("expected Makefile, got %s", lang)
	}
	if lang := Language("/README.MD"); lang != "Markdown" {
		t.Errorf("expected Markdown, got %s", lang)
	}
	if lang := Language("/data.xyz"); lang != "" {
		t.Errorf("expected empty, got %s", lang)
	}
}
