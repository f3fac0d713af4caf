package filetype

import (
	"path"
	"strings"
)

// languageExtensions lists, per language or markup format, the extensions it is stored under.
// Kept to the formats that show up in synced document folders, not a full linguist table.
var languageExtensions = map[string][]string{
	"Go":               {"go"},
	"JavaScript":       {"js", "jsx", "mjs", "cjs"},
	"TypeScript":       {"ts", "tsx", "mts", "cts"},
	"Python":           {"py", "pyi", "ipynb"},
	"Java":             {"java"},
	"Kotlin":           {"kt", "kts"},
	"C":                {"c", "h"},
	"C++":              {"cpp", "cc", "cxx", "hpp"},
	"C#":               {"cs"},
	"Swift":            {"swift"},
	"Rust":             {"rs"},
	"Ruby":             {"rb"},
	"PHP":              {"php"},
	"R":                {"r", "rmd"},
	"Lua":              {"lua"},
	"Shell":            {"sh", "bash", "zsh"},
	"PowerShell":       {"ps1"},
	"Batch":            {"bat", "cmd"},
	"HTML":             {"html", "htm"},
	"CSS":              {"css", "scss", "less"},
	"SQL":              {"sql"},
	"Markdown":         {"md", "mdx", "markdown"},
	"reStructuredText": {"rst"},
	"LaTeX":            {"tex", "bib"},
	"AsciiDoc":         {"adoc"},
	"JSON":             {"json", "jsonc"},
	"YAML":             {"yaml", "yml"},
	"TOML":             {"toml"},
	"XML":              {"xml", "xsl"},
	"INI":              {"ini", "cfg", "conf"},
	"SVG":              {"svg"},
}

// specialFilenames detects languages for well-known extensionless files.
var specialFilenames = map[string]string{
	"makefile":    "Makefile",
	"gnumakefile": "Makefile",
	"dockerfile":  "Dockerfile",
	"gemfile":     "Ruby",
	"rakefile":    "Ruby",
}

var extensionToLanguage = invertLanguages(languageExtensions)

func invertLanguages(byLanguage map[string][]string) map[string]string {
	out := make(map[string]string)
	for language, extensions := range byLanguage {
		for _, extension := range extensions {
			out[extension] = language
		}
	}
	return out
}

// Language names the language or markup format of a store path, "" when unknown.
func Language(filePath string) string {
	if ext := NormalizeExtension(path.Ext(filePath)); ext != "" {
		return extensionToLanguage[ext]
	}
	return specialFilenames[strings.ToLower(path.Base(filePath))]
}
