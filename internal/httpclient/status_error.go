package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is a non-2xx response. Code and Message are taken from the
// body when it is a JSON object.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// newStatusError builds a StatusError, reading code and message from the
// body. "error" is accepted as a message field because the server uses it.
func newStatusError(status int, body []byte) *StatusError {
	se := &StatusError{StatusCode: status, Body: body}
	fields := topLevelStrings(body)
	se.Code = fields["code"]
	se.Message = fields["message"]
	if se.Message == "" {
		se.Message = fields["error"]
	}
	return se
}

// topLevelStrings returns the string-valued top-level fields of a JSON
// object. Any other body yields an empty map.
func topLevelStrings(body []byte) map[string]string {
	out := map[string]string{}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return out
	}
	for k, raw := range obj {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out[strings.ToLower(k)] = s
		}
	}
	return out
}
