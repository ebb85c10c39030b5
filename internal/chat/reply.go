package chat

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// replyFields: поля ответа вебхука в порядке приоритета.
var replyFields = []string{"output", "text", "message"}

// ParseReply извлекает текст ответа: output, затем text, затем message,
// для массива берется первый элемент. Ответ не в JSON возвращается как есть.
func ParseReply(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", false
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return string(trimmed), true
	}

	return replyText(decoded)
}

func replyText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case map[string]any:
		for _, field := range replyFields {
			if text, ok := v[field].(string); ok && strings.TrimSpace(text) != "" {
				return text, true
			}
		}
		return "", false
	case []any:
		if len(v) == 0 {
			return "", false
		}
		return replyText(v[0])
	default:
		return "", false
	}
}

var (
	headingPattern  = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+`)
	boldPattern     = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	emphasisPattern = regexp.MustCompile(`\*([^*\n]+)\*|\b_([^_\n]+)_\b`)
)

// StripMarkdown убирает заголовки и выделение markdown, оставляя текст.
func StripMarkdown(text string) string {
	text = headingPattern.ReplaceAllString(text, "")
	text = boldPattern.ReplaceAllString(text, "$1$2")
	text = emphasisPattern.ReplaceAllString(text, "$1$2")
	return strings.TrimSpace(text)
}
