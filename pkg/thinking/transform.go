package thinking

import (
	"encoding/json"
	"regexp"
	"strings"
)

// thinkingTagPattern matches a complete <thinking ...>...</thinking> span,
// case-insensitively and non-greedily, plus surrounding whitespace.
var thinkingTagPattern = regexp.MustCompile(`(?is)\s*<thinking[^>]*>.*?</thinking>\s*`)

// unterminatedThinkingTagPattern matches a trailing <thinking ...> with no
// closing tag, which a truncated upstream-B stream can leave behind.
var unterminatedThinkingTagPattern = regexp.MustCompile(`(?is)\s*<thinking[^>]*>.*$`)

// TransformThinkingBlocks rewrites an upstream-B JSON response body into the
// shape upstream A's clients expect (C5). It is a no-op for non-JSON bodies,
// parse failures, and bodies with no content to rewrite.
func TransformThinkingBlocks(body []byte) []byte {
	obj, ok := decodeObject(body)
	if !ok {
		return body
	}

	if blocks, ok := contentAsBlocks(obj["content"]); ok {
		newBlocks, changed := transformContentBlocks(blocks)
		if !changed {
			return body
		}
		obj["content"] = newBlocks
		out, err := json.Marshal(obj)
		if err != nil {
			return body
		}
		return out
	}

	if s, ok := asString(obj["content"]); ok {
		stripped := stripThinkingTags(s)
		if stripped == s {
			return body
		}
		obj["content"] = stripped
		out, err := json.Marshal(obj)
		if err != nil {
			return body
		}
		return out
	}

	return body
}

func transformContentBlocks(blocks array) (array, bool) {
	changed := false
	out := make(array, len(blocks))
	for i, raw := range blocks {
		block, ok := raw.(object)
		if !ok || blockType(block) != blockTypeThinking {
			out[i] = raw
			continue
		}
		out[i] = object{"type": blockTypeThinking, "content": thinkingResponseText(block)}
		changed = true
	}
	return out, changed
}

// thinkingResponseText extracts the text payload for a response-side
// thinking block, per 4.5: top-level "content" string, then top-level
// "thinking" string, then the nested thinking sub-object's
// content/thinking/text strings, else the JSON serialization of the nested
// thinking object, else "".
func thinkingResponseText(block object) string {
	if s, ok := asString(block["content"]); ok {
		return s
	}
	if s, ok := asString(block["thinking"]); ok {
		return s
	}
	if sub, ok := block["thinking"].(object); ok {
		for _, key := range []string{"content", "thinking", "text"} {
			if s, ok := asString(sub[key]); ok {
				return s
			}
		}
		return serializeFallback(sub)
	}
	return ""
}

// stripThinkingTags removes every <thinking ...>...</thinking> span and any
// unterminated trailing <thinking ...> tail from a plain-string response
// body, trimming the result.
func stripThinkingTags(s string) string {
	s = thinkingTagPattern.ReplaceAllString(s, "")
	s = unterminatedThinkingTagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
