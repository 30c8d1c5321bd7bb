package cache

import "encoding/json"

// Meta is the on-disk sidecar record for one cache entry, stored as
// compact single-line JSON at "<hex_key>.<format>.meta". Field set and
// names are a documented external contract: format, file_size, quality,
// diff_score, passed, timestamp, access_count. Timestamp is the access
// timestamp — set at creation and updated on every Get — and is what
// eviction ranks on; there is no separate creation time in this record.
type Meta struct {
	Format      string  `json:"format"`
	FileSize    int64   `json:"file_size"`
	Quality     int     `json:"quality"`
	DiffScore   float64 `json:"diff_score"`
	Passed      bool    `json:"passed"`
	Timestamp   int64   `json:"timestamp"` // unix seconds, updated on access
	AccessCount int64   `json:"access_count"`
}

func (m *Meta) marshal() ([]byte, error) {
	return json.Marshal(m)
}

func unmarshalMeta(data []byte) (*Meta, error) {
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
