package client

import (
	"bytes"
	"encoding/json"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/errors"
	"go.lsp.dev/protocol"
)

// completionDecoder extracts labels from a completion result. ok is false when the
// result does not have the decoder's shape.
type completionDecoder func(result json.RawMessage) (labels []string, ok bool)

// Tried in order; the first match wins. Some servers (sqls) do not send conformant items,
// so the last decoder only looks at labels.
var _completionDecoders = []completionDecoder{
	decodeNull,
	decodeCompletionItems,
	decodeCompletionList,
	decodeLabels,
}

func decodeCompletion(result json.RawMessage) ([]string, error) {
	for _, decode := range _completionDecoders {
		if labels, ok := decode(result); ok {
			return labels, nil
		}
	}
	return nil, &errors.CompletionParseError{Result: result}
}

func decodeNull(result json.RawMessage) ([]string, bool) {
	trimmed := bytes.TrimSpace(result)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []string{}, true
	}
	return nil, false
}

func decodeCompletionItems(result json.RawMessage) ([]string, bool) {
	var items []protocol.CompletionItem
	if err := json.Unmarshal(result, &items); err != nil || !allLabeled(result) {
		return nil, false
	}
	return itemLabels(items), true
}

func decodeCompletionList(result json.RawMessage) ([]string, bool) {
	var probe struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(result, &probe); err != nil || probe.Items == nil {
		return nil, false
	}
	var list protocol.CompletionList
	if err := json.Unmarshal(result, &list); err != nil || !allLabeled(probe.Items) {
		return nil, false
	}
	return itemLabels(list.Items), true
}

// decodeLabels accepts any array of objects that all carry a string label.
func decodeLabels(result json.RawMessage) ([]string, bool) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(result, &items); err != nil {
		return nil, false
	}
	labels := make([]string, 0, len(items))
	for _, item := range items {
		raw, ok := item["label"]
		if !ok {
			return nil, false
		}
		var label string
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, false
		}
		if err := json.Unmarshal(raw, &label); err != nil {
			return nil, false
		}
		labels = append(labels, label)
	}
	return labels, true
}

// allLabeled reports whether items is an array whose elements all carry a label, which
// encoding/json does not enforce for the strict item type.
func allLabeled(items json.RawMessage) bool {
	var labeled []struct {
		Label *string `json:"label"`
	}
	if err := json.Unmarshal(items, &labeled); err != nil {
		return false
	}
	for _, item := range labeled {
		if item.Label == nil {
			return false
		}
	}
	return true
}

func itemLabels(items []protocol.CompletionItem) []string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	return labels
}
