package history

import (
	"encoding/json"
	"fmt"
)

// Kind names one of the per-user history collections.
type Kind string

const (
	KindAnalyses    Kind = "analyses"
	KindChats       Kind = "chats"
	KindGenerations Kind = "generations"
)

// Kinds lists every history collection.
var Kinds = []Kind{KindAnalyses, KindChats, KindGenerations}

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	switch k {
	case KindAnalyses, KindChats, KindGenerations:
		return true
	}
	return false
}

// RetentionCap returns how many records the fallback tier keeps per kind.
func RetentionCap(k Kind) int {
	if k == KindChats {
		return 5
	}
	return 10
}

// Record is a persisted history document, decoded as a JSON object.
type Record map[string]any

// ID returns the record's document key, empty when the store should assign one.
func (r Record) ID() string {
	if id, ok := r["id"].(string); ok {
		return id
	}
	return ""
}

// Timestamp returns the record's creation time in milliseconds since epoch.
func (r Record) Timestamp() int64 {
	switch v := r["timestamp"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// EncodeRecord converts a schema struct into a Record with every null-valued
// field recursively removed. The document store rejects nulls, so absent
// optional fields must disappear entirely rather than serialize as null.
func EncodeRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	stripped, _ := StripNulls(decoded).(map[string]any)
	return Record(stripped), nil
}

// StripNulls recursively removes null-valued fields from objects, descending
// through nested objects and sequences.
func StripNulls(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			out[k] = StripNulls(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, StripNulls(item))
		}
		return out
	default:
		return v
	}
}

// DecodeRecord unmarshals a Record back into a schema struct.
func DecodeRecord(r Record, dest any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
