package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key builds a deterministic cache key for a (source, action, params) triple.
//
// Params are canonicalized by marshaling, decoding into generic values, and
// re-marshaling: encoding/json emits map keys in sorted order, so structurally
// equal params produce the same key regardless of field declaration order.
// The readable source/action prefix keeps Clear("danggeun:") meaningful.
func Key(source, action string, params any) string {
	canonical := canonicalize(params)
	payload, _ := json.Marshal(struct {
		Source string          `json:"source"`
		Action string          `json:"action"`
		Params json.RawMessage `json:"params"`
	}{source, action, canonical})

	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s:%s:%s", source, action, hex.EncodeToString(sum[:]))
}

func canonicalize(params any) json.RawMessage {
	raw, err := json.Marshal(params)
	if err != nil {
		return json.RawMessage(`null`)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return raw
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return raw
	}
	return out
}
