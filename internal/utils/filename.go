package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a title safe to use as a download filename. Quotes
// are removed too, so the result can go inside a Content-Disposition header.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.Trim(strings.TrimSpace(filename), ".")

	// Limit length (most filesystems support 255, but leave room for extension)
	if len(filename) > 200 {
		filename = strings.TrimSpace(filename[:200])
	}

	if filename == "" {
		filename = "spell"
	}

	return filename
}

var languageExtensions = map[string]string{
	"javascript": "js",
	"typescript": "ts",
	"python":     "py",
	"java":       "java",
	"csharp":     "cs",
	"cpp":        "cpp",
	"c":          "c",
	"ruby":       "rb",
	"go":         "go",
	"rust":       "rs",
	"php":        "php",
	"swift":      "swift",
	"kotlin":     "kt",
	"scala":      "scala",
	"html":       "html",
	"css":        "css",
	"sql":        "sql",
	"shell":      "sh",
	"bash":       "sh",
	"powershell": "ps1",
	"r":          "r",
	"matlab":     "m",
	"lua":        "lua",
	"perl":       "pl",
	"haskell":    "hs",
	"elixir":     "ex",
	"dart":       "dart",
	"vue":        "vue",
	"react":      "jsx",
	"angular":    "ts",
	"svelte":     "svelte",
	"json":       "json",
	"yaml":       "yaml",
	"markdown":   "md",
	"xml":        "xml",
}

// LanguageExtension returns the file extension, without the dot, for a
// language. Unknown languages get "txt".
func LanguageExtension(language string) string {
	if ext, ok := languageExtensions[normalizeLanguage(language)]; ok {
		return ext
	}
	return "txt"
}

// SpellFilename builds the download name for a spell's code.
func SpellFilename(title, language string) string {
	return SanitizeFilename(title) + "." + LanguageExtension(language)
}
