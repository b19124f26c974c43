package thinking

const maxRepairPasses = 10

// repairMessageStructure applies the three structural rules from 4.4.3(b)
// repeatedly until a pass makes no change or the pass cap is hit: drop a
// leading run of non-user messages, merge consecutive same-role messages,
// and drop messages left with empty content. Order matters within a pass —
// dropping the leading prefix can expose a new pair of consecutive
// same-role messages, and merging two messages whose content coerces to
// empty block arrays produces empty content.
func repairMessageStructure(messages array) (array, bool) {
	changed := false
	for pass := 0; pass < maxRepairPasses; pass++ {
		next, didSomething := repairPass(messages)
		if !didSomething {
			return next, changed
		}
		messages = next
		changed = true
	}
	return messages, changed
}

func repairPass(messages array) (array, bool) {
	trimmed, droppedPrefix := dropLeadingNonUser(messages)
	merged, didMerge := mergeConsecutiveSameRole(trimmed)
	pruned, droppedEmpty := dropEmptyContent(merged)
	return pruned, droppedPrefix || didMerge || droppedEmpty
}

func dropLeadingNonUser(messages array) (array, bool) {
	i := 0
	for i < len(messages) {
		msg, ok := messages[i].(object)
		if !ok {
			break
		}
		role, _ := asString(msg["role"])
		if role == roleUser {
			break
		}
		i++
	}
	if i == 0 {
		return messages, false
	}
	return append(array{}, messages[i:]...), true
}

func mergeConsecutiveSameRole(messages array) (array, bool) {
	if len(messages) < 2 {
		return messages, false
	}

	out := make(array, 0, len(messages))
	changed := false
	out = append(out, messages[0])

	for i := 1; i < len(messages); i++ {
		prev, prevOK := out[len(out)-1].(object)
		curr, currOK := messages[i].(object)
		if !prevOK || !currOK {
			out = append(out, messages[i])
			continue
		}
		prevRole, _ := asString(prev["role"])
		currRole, _ := asString(curr["role"])
		if prevRole != "" && prevRole == currRole {
			out[len(out)-1] = mergeMessages(prev, curr)
			changed = true
			continue
		}
		out = append(out, messages[i])
	}
	return out, changed
}

// mergeMessages combines two same-role messages into one. String content is
// joined by a blank line; otherwise both sides are coerced to content-block
// arrays and concatenated, with a bare string coercing to a single text
// block.
func mergeMessages(a, b object) object {
	aStr, aIsStr := asString(a["content"])
	bStr, bIsStr := asString(b["content"])
	if aIsStr && bIsStr {
		merged := cloneWithContent(a, aStr+"\n\n"+bStr)
		return merged
	}

	aBlocks := coerceToBlocks(a["content"])
	bBlocks := coerceToBlocks(b["content"])
	combined := make(array, 0, len(aBlocks)+len(bBlocks))
	combined = append(combined, aBlocks...)
	combined = append(combined, bBlocks...)
	return cloneWithContent(a, combined)
}

// coerceToBlocks normalizes a message's content field to a content-block
// array: an array is passed through, a non-empty string becomes a single
// text block, and anything else (including absent content) becomes empty.
func coerceToBlocks(content interface{}) array {
	if blocks, ok := content.(array); ok {
		return blocks
	}
	if s, ok := asString(content); ok && s != "" {
		return array{newTextBlock(s)}
	}
	return array{}
}

func dropEmptyContent(messages array) (array, bool) {
	out := make(array, 0, len(messages))
	changed := false
	for _, raw := range messages {
		msg, ok := raw.(object)
		if !ok {
			out = append(out, raw)
			continue
		}
		if isEmptyContent(msg["content"]) {
			changed = true
			continue
		}
		out = append(out, msg)
	}
	return out, changed
}

func isEmptyContent(content interface{}) bool {
	switch v := content.(type) {
	case string:
		return v == ""
	case array:
		return len(v) == 0
	default:
		return false
	}
}

// repairOrphanToolResults rewrites any tool_result block whose tool_use_id
// has no matching tool_use in the immediately preceding assistant message
// into a plain text block, per 4.4.3(c).
func repairOrphanToolResults(messages array) (array, bool) {
	changed := false
	out := make(array, len(messages))
	copy(out, messages)

	for i, raw := range out {
		msg, ok := raw.(object)
		if !ok {
			continue
		}
		role, _ := asString(msg["role"])
		if role != roleUser {
			continue
		}
		blocks, ok := msg["content"].(array)
		if !ok {
			continue
		}

		validIDs := precedingToolUseIDs(out, i)

		newBlocks := make(array, len(blocks))
		blockChanged := false
		for j, rawBlock := range blocks {
			block, ok := rawBlock.(object)
			if !ok || blockType(block) != blockTypeToolResult {
				newBlocks[j] = rawBlock
				continue
			}
			id, _ := asString(block["tool_use_id"])
			if id != "" && validIDs[id] {
				newBlocks[j] = block
				continue
			}
			newBlocks[j] = orphanToolResultAsText(block)
			blockChanged = true
		}
		if blockChanged {
			out[i] = cloneWithContent(msg, newBlocks)
			changed = true
		}
	}
	return out, changed
}

// precedingToolUseIDs collects the tool_use ids of the message immediately
// before index i, if that message is an assistant message with array
// content. Any other shape yields an empty set, so every tool_result in the
// current message is treated as orphaned.
func precedingToolUseIDs(messages array, i int) map[string]bool {
	ids := map[string]bool{}
	if i == 0 {
		return ids
	}
	prev, ok := messages[i-1].(object)
	if !ok {
		return ids
	}
	role, _ := asString(prev["role"])
	if role != roleAssistant {
		return ids
	}
	blocks, ok := prev["content"].(array)
	if !ok {
		return ids
	}
	for _, raw := range blocks {
		block, ok := raw.(object)
		if !ok || blockType(block) != blockTypeToolUse {
			continue
		}
		if id, ok := asString(block["id"]); ok && id != "" {
			ids[id] = true
		}
	}
	return ids
}

// orphanToolResultAsText converts an orphaned tool_result into a text block
// carrying a fixed sentinel plus whatever textual payload the tool result
// held, per 4.4.3(c).
func orphanToolResultAsText(block object) object {
	text := "[previous tool result]"
	if body := toolResultText(block); body != "" {
		text += "\n" + body
	}
	return newTextBlock(text)
}

// toolResultText extracts a tool_result's own textual payload: its string
// content, or the concatenated text of its nested text blocks.
func toolResultText(block object) string {
	if s, ok := asString(block["content"]); ok {
		return s
	}
	if blocks, ok := block["content"].(array); ok {
		return concatenatedText(blocks)
	}
	return ""
}
