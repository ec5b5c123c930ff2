package summaries

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxContentChars bounds how much document text reaches the prompt.
	MaxContentChars  = 15000
	TruncationMarker = "... [truncated]"

	formatInstruction = "Format the summary with Markdown headings and bullet lists so it is easy to scan."
)

// NormalizeLanguage maps any request language to "zh" or "en".
func NormalizeLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "zh", "zh-cn", "zh-hans", "zh-tw", "zh-hant", "chinese":
		return "zh"
	default:
		return "en"
	}
}

func languageName(code string) string {
	if code == "zh" {
		return "Chinese"
	}
	return "English"
}

// Truncate keeps the first MaxContentChars characters and appends
// TruncationMarker when anything was cut.
func Truncate(content string) (string, bool) {
	if utf8.RuneCountInString(content) <= MaxContentChars {
		return content, false
	}
	count := 0
	for i := range content {
		if count == MaxContentChars {
			return content[:i] + TruncationMarker, true
		}
		count++
	}
	return content, false
}

// BuildPrompt composes the text sent to the summarizer. A custom prompt is
// used verbatim; otherwise a default instruction names the output language.
func BuildPrompt(content, language, customPrompt string) string {
	var b strings.Builder
	if custom := strings.TrimSpace(customPrompt); custom != "" {
		b.WriteString(custom)
		b.WriteString("\n")
		b.WriteString(formatInstruction)
		b.WriteString("\n\nDocument content:\n")
	} else {
		b.WriteString("Summarize the following document in ")
		b.WriteString(languageName(NormalizeLanguage(language)))
		b.WriteString(".\n")
		b.WriteString(formatInstruction)
		b.WriteString("\n\n")
	}
	b.WriteString(content)
	return b.String()
}
