package console

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/shipsec/reconcraft/client"
)

// FilterJSON applies a jq expression to the run's JSON document and returns
// all results. The run is round-tripped through JSON so gojq sees plain
// maps and slices rather than typed structs.
func FilterJSON(run *client.Run, expression string) ([]any, error) {
	parsed, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expression, err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("compile jq expression %q: %w", expression, err)
	}

	raw, err := json.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("encode run: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("normalize run document: %w", err)
	}

	iter := code.Run(doc)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq expression error: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}
