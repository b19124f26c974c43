package thinking

import "encoding/json"

// object and array are the loose JSON shapes this package operates on.
// encoding/json decodes a JSON object into object and a JSON array into
// array when the target is interface{}; every tree walk in this package
// type-switches on these two plus the JSON scalar types.
type object = map[string]interface{}
type array = []interface{}

const (
	blockTypeThinking   = "thinking"
	blockTypeText       = "text"
	blockTypeToolResult = "tool_result"
	blockTypeToolUse    = "tool_use"

	roleUser      = "user"
	roleAssistant = "assistant"
)

// decodeObject unmarshals body into a generic JSON object. It reports false
// (not an error) when body is not a JSON object at all, so callers can treat
// "not an object" the same as "malformed" — both mean "pass through".
func decodeObject(body []byte) (object, bool) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, false
	}
	obj, ok := v.(object)
	return obj, ok
}

// asNonEmptyString returns (s, true) if v is a non-empty JSON string.
func asNonEmptyString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// asString returns (s, true) if v is a JSON string, empty or not.
func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// blockType returns the "type" field of a content-block object, or "".
func blockType(block object) string {
	t, _ := asString(block["type"])
	return t
}

// textOf extracts the plain-text content of a text block, or "" if the
// block is not shaped like one.
func textOf(block object) string {
	t, _ := asString(block["text"])
	return t
}

// newTextBlock builds a {type:"text", text:"..."} content block.
func newTextBlock(text string) object {
	return object{"type": blockTypeText, "text": text}
}

// contentAsBlocks returns the "content" field as an array, plus whether the
// field was present as an array at all. Elements are not checked; callers
// skip any element that is not an object.
func contentAsBlocks(content interface{}) (array, bool) {
	arr, ok := content.(array)
	if !ok {
		return nil, false
	}
	return arr, true
}

// concatenatedText joins the "text" fields of every text block in blocks,
// the way a tool_result's nested content array reduces to a flat string.
func concatenatedText(blocks array) string {
	var out string
	for _, raw := range blocks {
		block, ok := raw.(object)
		if !ok {
			continue
		}
		if blockType(block) == blockTypeText {
			out += textOf(block)
		}
	}
	return out
}
