package model

import "net/http"

// NormalizedRequest is everything the document route extracts from one inbound request.
type NormalizedRequest struct {
	Lookup     LookupRequest
	Serialized []byte
	Headers    HeaderTable
}

// Normalize turns an inbound request and its fileid route parameter into a
// serialized lookup request plus a header snapshot. The request is not modified.
func Normalize(r *http.Request, fileID string) (NormalizedRequest, error) {
	lookup := NewLookupRequest(fileID)
	serialized, err := lookup.Serialize()
	if err != nil {
		return NormalizedRequest{}, err
	}
	return NormalizedRequest{
		Lookup:     lookup,
		Serialized: serialized,
		Headers:    NewHeaderTable(r.Header),
	}, nil
}
