package objson

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ToJSON reads one document, relaxed syntax and all, and returns it
// re-encoded as strict indented JSON. Back-references come out as the
// literal "@<id>" strings they are in the text.
func (s *Serializer) ToJSON(r io.Reader) ([]byte, error) {
	var v any
	if err := s.Read(&v, r); err != nil {
		return nil, err
	}
	return jsonAPI.MarshalIndent(v, "", "  ")
}

// FromJSON decodes strict JSON into target. It is a convenience for
// callers that mix registry-driven documents with plain JSON payloads.
func FromJSON(data []byte, target any) error {
	return jsonAPI.Unmarshal(data, target)
}
