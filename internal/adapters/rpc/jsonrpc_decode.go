package rpc

import (
	"encoding/json"
	"errors"
	"strings"
)

var errInvalidParams = errors.New("invalid params")

// decodeStringParam accepts ["value"] or {"<name>": "value"}.
func decodeStringParam(raw json.RawMessage, name string) (string, error) {
	v, err := decodeOptionalStringParam(raw, name)
	if err != nil || v == nil || strings.TrimSpace(*v) == "" {
		return "", errInvalidParams
	}
	return *v, nil
}

// decodeOptionalStringParam is decodeStringParam for a parameter that may be
// omitted; absent params, [] and {} yield nil.
func decodeOptionalStringParam(raw json.RawMessage, name string) (*string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		switch len(arr) {
		case 0:
			return nil, nil
		case 1:
			return &arr[0], nil
		default:
			return nil, errInvalidParams
		}
	}
	var obj map[string]*string
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errInvalidParams
	}
	for key := range obj {
		if key != name {
			return nil, errInvalidParams
		}
	}
	return obj[name], nil
}
