package client

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// genericFailure is surfaced when an error body carries none of the known
// fields.
const genericFailure = "request failed"

// APIError is a non-success response whose body has been decoded per the
// services' error conventions: a string detail, a structured list of
// validation errors, or a message field, in that order of preference.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func decodeAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: decodeErrorMessage(body)}
}

func decodeErrorMessage(body []byte) string {
	root := gjson.ParseBytes(body)

	if detail := root.Get("detail"); detail.Exists() {
		if detail.Type == gjson.String {
			return detail.String()
		}
		if detail.IsArray() {
			if msg := joinValidationErrors(detail); msg != "" {
				return msg
			}
		}
	}
	if msg := root.Get("message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	return genericFailure
}

// joinValidationErrors renders a structured validation list as
// "loc: msg | loc: msg". Location paths are joined with dots.
func joinValidationErrors(detail gjson.Result) string {
	parts := make([]string, 0)
	for _, item := range detail.Array() {
		msg := item.Get("msg").String()
		loc := item.Get("loc")

		var where string
		if loc.IsArray() {
			segs := make([]string, 0)
			for _, seg := range loc.Array() {
				segs = append(segs, seg.String())
			}
			where = strings.Join(segs, ".")
		} else {
			where = loc.String()
		}

		switch {
		case where != "" && msg != "":
			parts = append(parts, where+": "+msg)
		case msg != "":
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, " | ")
}
