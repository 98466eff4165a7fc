package utils

import "strings"

// DefaultLanguageColor is used for languages without a brand color.
const DefaultLanguageColor = "#6b7280"

var languageColors = map[string]string{
	"javascript": "#f7df1e",
	"typescript": "#3178c6",
	"python":     "#3776ab",
	"java":       "#007396",
	"csharp":     "#239120",
	"cpp":        "#00599c",
	"c":          "#555555",
	"ruby":       "#cc342d",
	"go":         "#00add8",
	"rust":       "#dea584",
	"php":        "#777bb4",
	"swift":      "#fa7343",
	"kotlin":     "#7f52ff",
	"scala":      "#dc322f",
	"html":       "#e34c26",
	"css":        "#1572b6",
	"sql":        "#e38c00",
	"shell":      "#89e051",
	"bash":       "#4eaa25",
	"powershell": "#012456",
	"r":          "#276dc3",
	"matlab":     "#e16737",
	"lua":        "#000080",
	"perl":       "#39457e",
	"haskell":    "#5e5086",
	"elixir":     "#6e4a7e",
	"dart":       "#0175c2",
	"vue":        "#42b883",
	"react":      "#61dafb",
	"angular":    "#dd0031",
	"svelte":     "#ff3e00",
	"json":       "#000000",
	"yaml":       "#cb171e",
	"markdown":   "#083fa1",
	"xml":        "#0060ac",
}

// normalizeLanguage lowercases and strips whitespace ("C Sharp" -> "csharp").
func normalizeLanguage(language string) string {
	return strings.Join(strings.Fields(strings.ToLower(language)), "")
}

// LanguageColor returns the hex badge color for a language.
func LanguageColor(language string) string {
	if color, ok := languageColors[normalizeLanguage(language)]; ok {
		return color
	}
	return DefaultLanguageColor
}
