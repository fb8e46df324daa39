package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/tlrun"
)

// buildSystemPrompt is shared by the LLM providers.
func buildSystemPrompt(req TranslateRequest) string {
	targetName := tlrun.GetLanguageName(req.TargetLang)

	source := "the detected source language"
	if req.SourceLang != "" && req.SourceLang != tlrun.AutoLang {
		source = tlrun.GetLanguageName(req.SourceLang)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert native translator. You translate text from %s to %s with the fluency of a native speaker.

# Task
Translate each of the provided texts into idiomatic %s.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase to sound natural to a native speaker.
- **HTML/Code Safety**: Do NOT translate HTML tags, attributes, URLs, email addresses, or content inside <code> blocks.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s, $1).
- **Formatting**: Preserve leading/trailing spaces and newlines.`, source, targetName, targetName)

	if tlrun.IsRTL(req.TargetLang) {
		prompt += fmt.Sprintf("\n- **Direction**: %s is written right-to-left; keep punctuation natural for it.", targetName)
	}
	if req.IsHTML {
		prompt += "\n- **Markup**: The input is an HTML fragment. Return it with identical markup and only the human-readable text translated."
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
- Do NOT wrap in Markdown code blocks.`

	return prompt
}

func buildUserMessage(req TranslateRequest) string {
	data, _ := json.Marshal(req.Texts)
	return string(data)
}

// parseTranslations reads the model's JSON answer: an object with a
// "translations" array, any object with one array value, or a bare array.
func parseTranslations(provider, content string, expectedCount int) ([]string, error) {
	content = stripCodeFence(content)

	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
		for _, v := range objResult {
			if arr, ok := v.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arrResult []interface{}
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &tlrun.ProviderError{
		Provider: provider,
		Message:  "invalid response format",
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &tlrun.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}
	return result, nil
}

// isRetryableMessage matches transient failures reported only as text.
func isRetryableMessage(err error) bool {
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
