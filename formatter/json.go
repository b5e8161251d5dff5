package formatter

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Indent used by every indented artifact
const Indent = "  "

// Marshal encodes v as compact JSON without a trailing newline
func Marshal(v any) ([]byte, error) {
	return encode(v, "")
}

// MarshalIndent encodes v with two-space indentation
func MarshalIndent(v any) ([]byte, error) {
	return encode(v, Indent)
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSON writes v with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	b, err := Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return err
	}
	WriteRaw(w, status, b)
	return nil
}

// WriteRaw writes pre-encoded JSON with the given status code
func WriteRaw(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// ErrorBody is the JSON body of non-2xx responses
type ErrorBody struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}
