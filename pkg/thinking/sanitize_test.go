package thinking

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shunirr/cc-glm/pkg/sigstore"
)

func mustDecode(t *testing.T, body []byte) object {
	t.Helper()
	obj, ok := decodeObject(body)
	if !ok {
		t.Fatalf("decodeObject failed on %s", body)
	}
	return obj
}

func TestExtractAndRecordSignaturesRecordsEveryThinkingSignature(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{"content":[{"type":"thinking","signature":"S1","content":"T"},{"type":"text","text":"hi"}]}`)

	out := ExtractAndRecordSignatures(body, store)

	if !reflect.DeepEqual(out, body) {
		t.Error("ExtractAndRecordSignatures must return the input unchanged")
	}
	if !store.Has("S1") {
		t.Error("expected signature S1 to be recorded")
	}
}

func TestExtractAndRecordSignaturesMalformedJSONIsNoop(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`not json`)

	out := ExtractAndRecordSignatures(body, store)
	if string(out) != string(body) {
		t.Error("malformed JSON must pass through unchanged")
	}
	if store.Size() != 0 {
		t.Error("malformed JSON must not record anything")
	}
}

func TestSanitizeRequestForAMalformedJSONReturnsInputUnchanged(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{not json`)
	out := SanitizeRequestForA(body, store)
	if string(out) != string(body) {
		t.Error("malformed JSON must be returned unchanged")
	}
}

func TestSanitizeRequestForANonArrayMessagesReturnsInputUnchanged(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{"messages":"oops"}`)
	out := SanitizeRequestForA(body, store)
	if string(out) != string(body) {
		t.Error("non-array messages must be returned unchanged")
	}
}

// E2 signature round-trip.
func TestOriginPreservationKnownSignatureKeptVerbatim(t *testing.T) {
	store := sigstore.New(10)
	store.Add("S1")

	body := []byte(`{"messages":[{"role":"assistant","content":[{"type":"thinking","signature":"S1","content":"T"}]}]}`)
	out := SanitizeRequestForA(body, store)

	obj := mustDecode(t, out)
	messages := obj["messages"].(array)
	if len(messages) != 0 {
		t.Fatalf("expected the leading non-user message to be dropped, got %d messages", len(messages))
	}

	withUser := []byte(`{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":[{"type":"thinking","signature":"S1","content":"T"}]}]}`)
	if got := SanitizeRequestForA(withUser, store); string(got) != string(withUser) {
		t.Errorf("expected the known-signature thinking block to be kept verbatim, got %s", got)
	}
}

func TestThinkingBlockWithUnknownSignatureButThinkingSubfieldConvertsToText(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":[{"type":"thinking","signature":"unknown","thinking":"reasoning here"}]}]}`)

	out := SanitizeRequestForA(body, store)
	obj := mustDecode(t, out)
	messages := obj["messages"].(array)
	last := messages[len(messages)-1].(object)
	blocks := last["content"].(array)
	block := blocks[0].(object)

	if blockType(block) != blockTypeText {
		t.Fatalf("expected thinking block to convert to text, got %+v", block)
	}
	text := textOf(block)
	if text != "<previous-glm-reasoning>\nreasoning here\n</previous-glm-reasoning>" {
		t.Errorf("unexpected wrapped text: %q", text)
	}
}

func TestThinkingBlockWithUnrecordedSignatureAndNoSubfieldKeptVerbatim(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":[{"type":"thinking","signature":"post-restart-sig","content":"T"}]}]}`)

	out := SanitizeRequestForA(body, store)
	obj := mustDecode(t, out)
	messages := obj["messages"].(array)
	last := messages[len(messages)-1].(object)
	blocks := last["content"].(array)
	block := blocks[0].(object)

	if blockType(block) != blockTypeThinking {
		t.Fatalf("expected thinking block kept verbatim, got %+v", block)
	}
	if sig, _ := asString(block["signature"]); sig != "post-restart-sig" {
		t.Errorf("signature mutated: %q", sig)
	}
}

func TestThinkingBlockWithNoSignatureAndNoSubfieldConvertsToText(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":[{"type":"thinking","content":"bare"}]}]}`)

	out := SanitizeRequestForA(body, store)
	obj := mustDecode(t, out)
	messages := obj["messages"].(array)
	last := messages[len(messages)-1].(object)
	blocks := last["content"].(array)
	block := blocks[0].(object)

	if blockType(block) != blockTypeText {
		t.Fatalf("expected conversion to text, got %+v", block)
	}
}

// E4 orphan tool_result.
func TestOrphanToolResultRepairedToText(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{"messages":[{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"ok"}]}]}`)

	out := SanitizeRequestForA(body, store)
	obj := mustDecode(t, out)
	messages := obj["messages"].(array)
	msg := messages[0].(object)
	blocks := msg["content"].(array)
	block := blocks[0].(object)

	if blockType(block) != blockTypeText {
		t.Fatalf("expected orphan tool_result to become text, got %+v", block)
	}
	if textOf(block) != "[previous tool result]\nok" {
		t.Errorf("unexpected text: %q", textOf(block))
	}
}

func TestToolResultWithMatchingPrecedingToolUseIsKept(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{"messages":[
		{"role":"user","content":"hi"},
		{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"foo","input":{}}]},
		{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"ok"}]}
	]}`)

	out := SanitizeRequestForA(body, store)
	obj := mustDecode(t, out)
	messages := obj["messages"].(array)
	last := messages[len(messages)-1].(object)
	blocks := last["content"].(array)
	block := blocks[0].(object)

	if blockType(block) != blockTypeToolResult {
		t.Fatalf("expected tool_result kept, got %+v", block)
	}
}

// Testable property 4: sanitizer idempotence.
func TestSanitizeRequestForAIsIdempotent(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{"messages":[
		{"role":"assistant","content":"stray leading assistant message"},
		{"role":"user","content":[{"type":"tool_result","tool_use_id":"missing","content":"x"}]},
		{"role":"user","content":"hello"},
		{"role":"user","content":"again"},
		{"role":"assistant","content":[{"type":"thinking","thinking":"reasoning"}]}
	]}`)

	once := SanitizeRequestForA(body, store)
	twice := SanitizeRequestForA(once, store)

	var onceObj, twiceObj interface{}
	if err := json.Unmarshal(once, &onceObj); err != nil {
		t.Fatalf("once did not parse: %v", err)
	}
	if err := json.Unmarshal(twice, &twiceObj); err != nil {
		t.Fatalf("twice did not parse: %v", err)
	}
	if !reflect.DeepEqual(onceObj, twiceObj) {
		t.Errorf("sanitizer is not idempotent:\nonce:  %s\ntwice: %s", once, twice)
	}
}

// Testable property 6: structure post-condition.
func TestStructurePostConditionBeginsWithUserAndAlternates(t *testing.T) {
	store := sigstore.New(10)
	body := []byte(`{"messages":[
		{"role":"assistant","content":"orphaned lead-in"},
		{"role":"assistant","content":"another assistant turn"},
		{"role":"user","content":""},
		{"role":"user","content":"real question"},
		{"role":"assistant","content":"an answer"}
	]}`)

	out := SanitizeRequestForA(body, store)
	obj := mustDecode(t, out)
	messages := obj["messages"].(array)

	if len(messages) == 0 {
		t.Fatal("expected at least one message to survive repair")
	}
	first := messages[0].(object)
	if role, _ := asString(first["role"]); role != roleUser {
		t.Errorf("first message role = %q, want user", role)
	}

	var prevRole string
	for i, raw := range messages {
		msg := raw.(object)
		role, _ := asString(msg["role"])
		if i > 0 && role == prevRole {
			t.Errorf("messages[%d] role %q repeats previous role, alternation violated", i, role)
		}
		prevRole = role

		if isEmptyContent(msg["content"]) {
			t.Errorf("messages[%d] has empty content", i)
		}
	}
}

func TestSanitizeRequestForANoStoreRewritesSignatureAndThinkingFields(t *testing.T) {
	body := []byte(`{"messages":[{"role":"assistant","content":[{"type":"thinking","signature":"s","content":"old","thinking":"new reasoning","cache_control":{"type":"ephemeral"}}]}]}`)

	out := SanitizeRequestForA_noStore(body)
	obj := mustDecode(t, out)
	messages := obj["messages"].(array)
	msg := messages[0].(object)
	blocks := msg["content"].(array)
	block := blocks[0].(object)

	if _, present := block["signature"]; present {
		t.Error("signature must be deleted")
	}
	if _, present := block["thinking"]; present {
		t.Error("thinking sub-field must be deleted")
	}
	if c, _ := asString(block["content"]); c != "new reasoning" {
		t.Errorf("content = %q, want thinking sub-field to win", c)
	}
	if _, present := block["cache_control"]; !present {
		t.Error("cache_control must be preserved")
	}
}

func TestSanitizeRequestForANoStoreEnsuresContentAtLeastEmptyString(t *testing.T) {
	body := []byte(`{"messages":[{"role":"assistant","content":[{"type":"thinking"}]}]}`)

	out := SanitizeRequestForA_noStore(body)
	obj := mustDecode(t, out)
	messages := obj["messages"].(array)
	msg := messages[0].(object)
	blocks := msg["content"].(array)
	block := blocks[0].(object)

	content, ok := block["content"].(string)
	if !ok {
		t.Fatalf("content is not a string: %+v", block["content"])
	}
	if content != "" {
		t.Errorf("content = %q, want empty string", content)
	}
}
