package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/trace"
)

// marshalReady converts a ready set to canonical JSON TEXT.
func marshalReady(ids []int64) (string, error) {
	arr := make([]any, len(ids))
	for i, id := range ids {
		arr[i] = id
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal ready: %w", err)
	}
	return string(data), nil
}

// marshalHazards converts hazards to canonical JSON TEXT.
func marshalHazards(hazards []trace.Hazard) (string, error) {
	arr := make([]any, len(hazards))
	for i, h := range hazards {
		arr[i] = map[string]any{"node": h.Node, "kind": string(h.Kind)}
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal hazards: %w", err)
	}
	return string(data), nil
}

func unmarshalReady(data string) ([]int64, error) {
	ids := []int64{}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal ready: %w", err)
	}
	return ids, nil
}

// unmarshalHazards returns nil for an empty list, matching what a recorder
// produces for a hazard-free decision.
func unmarshalHazards(data string) ([]trace.Hazard, error) {
	var hazards []trace.Hazard
	if err := json.Unmarshal([]byte(data), &hazards); err != nil {
		return nil, fmt.Errorf("unmarshal hazards: %w", err)
	}
	if len(hazards) == 0 {
		return nil, nil
	}
	return hazards, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
