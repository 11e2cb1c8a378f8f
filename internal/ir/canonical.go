package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for hashing.
// This is the ONLY serialization that should be used for content-addressed
// identity computation.
//
// Differences from json.Marshal:
//  1. Object keys sorted bytewise
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No floats, no null (returns error)
//
// Supported values: string, bool, int, int64, []any, map[string]any.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return writeCanonicalString(buf, val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case int:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case int64:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	case float64, float32:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// json.Encoder adds a trailing newline
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// CanonicalRoutine converts r into the plain value tree hashed by
// RoutineHash. Blocks keep declaration order, nodes keep block order, and
// every reference is expressed by ID.
func CanonicalRoutine(r *Routine) map[string]any {
	blocks := make([]any, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		preds := make([]any, 0, len(b.CfgPreds))
		for _, p := range b.CfgPreds {
			preds = append(preds, p.ID)
		}
		nodes := make([]any, 0, len(b.Nodes))
		for _, n := range b.Nodes {
			in := make([]any, 0, len(n.In))
			for _, op := range n.In {
				in = append(in, op.ID)
			}
			nodes = append(nodes, map[string]any{
				"id":   n.ID,
				"name": n.Name,
				"op":   string(n.Op),
				"in":   in,
				"num":  n.Num,
			})
		}
		blocks = append(blocks, map[string]any{
			"id":    b.ID,
			"name":  b.Name,
			"preds": preds,
			"nodes": nodes,
		})
	}
	return map[string]any{
		"name":   r.Name,
		"blocks": blocks,
	}
}
