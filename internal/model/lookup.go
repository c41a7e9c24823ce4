package model

import (
	"encoding/json"
	"fmt"
)

// LookupRequest identifies the document a caller wants the orchestrator to return.
// It is built once per inbound request and never modified afterwards.
type LookupRequest struct {
	fileID string
}

// lookupRequestJSON is the wire form sent to the orchestrator: {"fileid": "..."}.
type lookupRequestJSON struct {
	FileID string `json:"fileid"`
}

// NewLookupRequest builds a LookupRequest for fileID. The identifier is not
// validated; an empty string is passed through to the orchestrator as-is.
func NewLookupRequest(fileID string) LookupRequest {
	return LookupRequest{fileID: fileID}
}

// FileID returns the document identifier.
func (r LookupRequest) FileID() string {
	return r.fileID
}

// Serialize returns the JSON wire form of the lookup request.
func (r LookupRequest) Serialize() ([]byte, error) {
	data, err := json.Marshal(lookupRequestJSON{FileID: r.fileID})
	if err != nil {
		return nil, fmt.Errorf("marshal lookup request: %w", err)
	}
	return data, nil
}

// ParseLookupRequest decodes the JSON wire form produced by Serialize.
func ParseLookupRequest(data []byte) (LookupRequest, error) {
	var raw lookupRequestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return LookupRequest{}, fmt.Errorf("decode lookup request: %w", err)
	}
	return NewLookupRequest(raw.FileID), nil
}
