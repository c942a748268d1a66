// Package inspect runs jq-style queries against a JSON snapshot of SDK
// state (a dumped transcribe.DocumentState or a recorder status struct)
// for maintainer debugging. It never touches the SDK's own state
// directly: the snapshot is produced and owned by the embedding
// application, consistent with the no-persistence invariant the SDK
// core itself upholds.
package inspect

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// Query is a parsed jq expression ready to run against decoded JSON
// values.
type Query struct {
	expr  string
	query *gojq.Query
}

// Parse compiles a jq expression, catching syntax errors before Run.
func Parse(expr string) (*Query, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("inspect: invalid jq expression %q: %w", expr, err)
	}
	return &Query{expr: expr, query: query}, nil
}

// Run decodes a JSON snapshot and evaluates the query against it,
// returning every result the expression yields, each JSON-encoded.
func (q *Query) Run(snapshot []byte) ([]string, error) {
	var input any
	if err := json.Unmarshal(snapshot, &input); err != nil {
		return nil, fmt.Errorf("inspect: decode snapshot: %w", err)
	}

	iter := q.query.Run(input)
	var results []string
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("inspect: jq expression %q: %w", q.expr, err)
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("inspect: encode result: %w", err)
		}
		results = append(results, string(encoded))
	}
	return results, nil
}

// RunExpr is a convenience wrapper combining Parse and Run for one-shot
// use (the speechcorectl inspect subcommand's common case).
func RunExpr(expr string, snapshot []byte) ([]string, error) {
	q, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return q.Run(snapshot)
}
