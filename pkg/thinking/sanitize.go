package thinking

import (
	"encoding/json"

	"github.com/shunirr/cc-glm/pkg/sigstore"
)

// ExtractAndRecordSignatures scans an upstream-A response body for
// "thinking" blocks carrying a non-empty signature and records each one in
// store. The input bytes are always returned unchanged — this operation is
// an observer, never a rewrite. Malformed JSON is a no-op.
func ExtractAndRecordSignatures(body []byte, store *sigstore.Store) []byte {
	obj, ok := decodeObject(body)
	if !ok {
		return body
	}
	blocks, ok := contentAsBlocks(obj["content"])
	if !ok {
		return body
	}
	for _, raw := range blocks {
		block, ok := raw.(object)
		if !ok || blockType(block) != blockTypeThinking {
			continue
		}
		if sig, ok := asNonEmptyString(block["signature"]); ok {
			store.Add(sig)
		}
	}
	return body
}

// SanitizeRequestForA rewrites a client-supplied request body before it is
// forwarded to upstream A: thinking blocks not provably A-origin are
// converted to plain text, and the message sequence is repaired to satisfy
// the structural invariants A imposes. If nothing changes, the input bytes
// are returned byte-identical.
func SanitizeRequestForA(body []byte, store *sigstore.Store) []byte {
	obj, ok := decodeObject(body)
	if !ok {
		return body
	}
	messages, ok := obj["messages"].(array)
	if !ok {
		return body
	}

	changed := false

	rewritten := make(array, len(messages))
	for i, raw := range messages {
		msg, ok := raw.(object)
		if !ok {
			rewritten[i] = raw
			continue
		}
		newContent, did := sanitizeMessageContent(msg["content"], store, true)
		if did {
			msg = cloneWithContent(msg, newContent)
			changed = true
		}
		rewritten[i] = msg
	}

	repaired, repairedChanged := repairMessageStructure(rewritten)
	if repairedChanged {
		changed = true
	}
	repaired, orphanChanged := repairOrphanToolResults(repaired)
	if orphanChanged {
		changed = true
	}

	if !changed {
		return body
	}

	obj["messages"] = repaired
	out, err := json.Marshal(obj)
	if err != nil {
		return body
	}
	return out
}

// SanitizeRequestForA_noStore is the legacy sanitizer retained for callers
// with no signature store: it forgoes origin detection entirely and
// rewrites every thinking block into the bare A-shape. Production callers
// use SanitizeRequestForA.
func SanitizeRequestForA_noStore(body []byte) []byte {
	obj, ok := decodeObject(body)
	if !ok {
		return body
	}
	messages, ok := obj["messages"].(array)
	if !ok {
		return body
	}

	changed := false
	rewritten := make(array, len(messages))
	for i, raw := range messages {
		msg, ok := raw.(object)
		if !ok {
			rewritten[i] = raw
			continue
		}
		newContent, did := sanitizeMessageContent(msg["content"], nil, false)
		if did {
			msg = cloneWithContent(msg, newContent)
			changed = true
		}
		rewritten[i] = msg
	}

	if !changed {
		return body
	}
	obj["messages"] = rewritten
	out, err := json.Marshal(obj)
	if err != nil {
		return body
	}
	return out
}

// cloneWithContent returns a shallow copy of msg with content substituted,
// so the caller never mutates a map shared with the original parse tree.
func cloneWithContent(msg object, content interface{}) object {
	clone := make(object, len(msg))
	for k, v := range msg {
		clone[k] = v
	}
	clone["content"] = content
	return clone
}

// sanitizeMessageContent applies the per-block rewrite rules to a message's
// content field. String content is left alone. Array content is walked
// block by block. withOriginDetection selects between the store-aware
// (4.4.3) and legacy no-store (4.4.4) thinking-block rewrite.
func sanitizeMessageContent(content interface{}, store *sigstore.Store, withOriginDetection bool) (interface{}, bool) {
	blocks, ok := content.(array)
	if !ok {
		return content, false
	}

	changed := false
	out := make(array, len(blocks))
	for i, raw := range blocks {
		block, ok := raw.(object)
		if !ok {
			out[i] = raw
			continue
		}

		switch blockType(block) {
		case blockTypeThinking:
			var newBlock object
			if withOriginDetection {
				newBlock = sanitizeThinkingBlock(block, store)
				if blockType(newBlock) == blockTypeThinking {
					// Kept verbatim: not a change.
					out[i] = block
					continue
				}
			} else {
				newBlock = sanitizeThinkingBlockNoStore(block)
			}
			out[i] = newBlock
			changed = true

		case blockTypeToolResult:
			nested, nestedOK := block["content"].(array)
			if !nestedOK {
				out[i] = block
				continue
			}
			newNested, nestedChanged := sanitizeMessageContent(nested, store, withOriginDetection)
			if nestedChanged {
				block = cloneWithContent(block, newNested)
				changed = true
			}
			out[i] = block

		default:
			out[i] = block
		}
	}

	if !changed {
		return content, false
	}
	return out, true
}

// sanitizeThinkingBlock applies origin detection (4.4.3): a thinking block
// verified against the signature store, or bearing a signature the store
// has not yet seen (a post-restart A-origin block), is kept verbatim.
// Everything else is a B-shaped block and is converted to text.
func sanitizeThinkingBlock(block object, store *sigstore.Store) object {
	if sig, ok := asNonEmptyString(block["signature"]); ok && store != nil && store.Has(sig) {
		return block
	}
	if _, hasSubField := block["thinking"]; hasSubField {
		return newTextBlock(wrapGLMReasoning(extractThinkingText(block)))
	}
	if _, ok := asNonEmptyString(block["signature"]); ok {
		return block
	}
	return newTextBlock(wrapGLMReasoning(extractThinkingText(block)))
}

// sanitizeThinkingBlockNoStore implements 4.4.4: every thinking block is
// rebuilt from scratch, keeping only the content/cache_control fields, with
// a nested "thinking" sub-field's text always winning over any pre-existing
// content.
func sanitizeThinkingBlockNoStore(block object) object {
	rebuilt := object{"type": blockTypeThinking}
	if cc, ok := block["cache_control"]; ok {
		rebuilt["cache_control"] = cc
	}
	content, _ := asString(block["content"])
	if _, hasSubField := block["thinking"]; hasSubField {
		content = extractThinkingText(block)
	}
	rebuilt["content"] = content
	return rebuilt
}

// wrapGLMReasoning wraps a converted-to-text thinking extract in the
// sentinel tags that mark it as carried-over reasoning from a prior turn,
// rather than the model's current output.
func wrapGLMReasoning(extract string) string {
	return "<previous-glm-reasoning>\n" + extract + "\n</previous-glm-reasoning>"
}

// extractThinkingText finds the first defined textual payload of a thinking
// block per the precedence in 4.4.3: top-level "thinking" string, then
// top-level "content" string, then the nested thinking sub-object's own
// content/thinking/text strings, then a nested content object's "text", and
// finally the raw JSON serialization of whatever nested object is present.
func extractThinkingText(block object) string {
	if s, ok := asString(block["thinking"]); ok {
		return s
	}
	if s, ok := asString(block["content"]); ok {
		return s
	}
	if sub, ok := block["thinking"].(object); ok {
		for _, key := range []string{"content", "thinking", "text"} {
			if s, ok := asString(sub[key]); ok {
				return s
			}
		}
	}
	if sub, ok := block["content"].(object); ok {
		if s, ok := asString(sub["text"]); ok {
			return s
		}
	}
	if sub, ok := block["thinking"].(object); ok {
		return serializeFallback(sub)
	}
	if sub, ok := block["content"].(object); ok {
		return serializeFallback(sub)
	}
	return ""
}

func serializeFallback(v interface{}) string {
	out, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(out)
}
