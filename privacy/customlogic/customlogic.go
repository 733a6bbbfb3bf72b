package customlogic

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diegoholiveira/jsonlogic/v3"
)

// Evaluator holds one compiled json-logic restriction. A truthy evaluation
// result means the governed activity must be denied.
type Evaluator struct {
	rule json.RawMessage
}

// New validates the json-logic expression up front so malformed publisher
// config fails at account build time, not at decision time.
func New(rule json.RawMessage) (*Evaluator, error) {
	if len(rule) == 0 {
		return nil, errors.New("custom logic rule is empty")
	}
	if !jsonlogic.IsValid(bytes.NewReader(rule)) {
		return nil, fmt.Errorf("invalid custom logic rule: %s", string(rule))
	}
	return &Evaluator{rule: rule}, nil
}

// Restrict evaluates the expression against the request attributes.
// Evaluation errors are reported, never treated as a restriction.
func (e *Evaluator) Restrict(attributes map[string]interface{}) (bool, error) {
	data, err := json.Marshal(attributes)
	if err != nil {
		return false, err
	}

	result, err := jsonlogic.ApplyRaw(e.rule, data)
	if err != nil {
		return false, err
	}

	return isTruthy(result), nil
}

func isTruthy(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch value := v.(type) {
	case bool:
		return value
	case float64:
		return value != 0
	case string:
		return value != ""
	case nil:
		return false
	default:
		return true
	}
}
