package utils

import (
	"strings"
	"unicode"
)

// DeduplicateSlice 去重字符串切片，去除空白项并保持顺序
func DeduplicateSlice(input []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0)

	for _, val := range input {
		val = strings.TrimSpace(val)
		if val != "" && !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}

	return result
}

// ExtractJSON 从模型输出中提取JSON部分
// Falls back to a ```json fenced block, then to the raw text.
func ExtractJSON(text string) string {
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")

	if startIdx >= 0 && endIdx > startIdx {
		return text[startIdx : endIdx+1]
	}

	// 查找```json和```之间的内容
	startMarker := "```json"
	endMarker := "```"
	startIdx = strings.Index(text, startMarker)
	if startIdx >= 0 {
		startIdx += len(startMarker)
		endIdx = strings.Index(text[startIdx:], endMarker)
		if endIdx > 0 {
			return strings.TrimSpace(text[startIdx : startIdx+endIdx])
		}
	}

	return strings.TrimSpace(text)
}

// Preview 截断长文本用于日志
func Preview(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}

// FilterSpecialSymbols 过滤控制字符与不可见字符，保留字母、数字、空白和常见标点
func FilterSpecialSymbols(text string) string {
	var result strings.Builder
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			result.WriteRune(' ')
		case unicode.IsControl(r):
			// 丢弃
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
