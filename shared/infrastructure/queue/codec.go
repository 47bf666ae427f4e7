package queue

import "encoding/json"

// encodeBody JSON encodes body unless it is already a byte slice.
func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(body)
	}
}
