package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

// decode unmarshals an optional JSON body into a command variant.
func decode[C any](raw json.RawMessage) (C, error) {
	var cmd C
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return cmd, nil
	}
	if err := json.Unmarshal(trimmed, &cmd); err != nil {
		return cmd, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed action payload")
	}
	return cmd, nil
}

// unknownAction names the actions the entity accepts.
func unknownAction(kind, action string, known []string) error {
	return appErrors.Clone(appErrors.ErrValidation,
		fmt.Sprintf("unknown %s action %q, expected one of: %s", kind, action, strings.Join(known, ", ")))
}

func names[A ~string](values []A) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
