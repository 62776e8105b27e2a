package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/ledgerload/internal/ir"
)

// marshalArgs converts flow arguments to canonical JSON TEXT for storage.
func marshalArgs(args ir.Array) (string, error) {
	if args == nil {
		args = ir.Array{}
	}
	data, err := ir.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

// unmarshalArgs parses stored arguments. ir.Array.UnmarshalJSON keeps
// integers exact beyond 2^53.
func unmarshalArgs(data string) (ir.Array, error) {
	if data == "" || data == "[]" {
		return ir.Array{}, nil
	}
	var arr ir.Array
	if err := json.Unmarshal([]byte(data), &arr); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return arr, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
