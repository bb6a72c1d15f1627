package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mramin786/jboss-monitor/internal/monitor"
)

// Reserved metadata keys. The persisted document is a flat JSON object
// whose keys are either host identifiers or metadata; the underscore prefix
// keeps the two namespaces apart, so host identifiers must never start
// with one.
const (
	MetaPrefix      = "_"
	MetaLastUpdated = "_last_updated"
	MetaInProgress  = "_refresh_in_progress"
)

// StatusMap is one environment's persisted status document: host id →
// status record, plus string metadata.
type StatusMap struct {
	Records map[string]monitor.StatusRecord
	Meta    map[string]string
}

// NewStatusMap returns an empty map ready for use.
func NewStatusMap() *StatusMap {
	return &StatusMap{
		Records: make(map[string]monitor.StatusRecord),
		Meta:    make(map[string]string),
	}
}

// Set stores the record for a host id.
func (m *StatusMap) Set(hostID string, rec monitor.StatusRecord) {
	m.Records[hostID] = rec
}

// Get returns the record for a host id.
func (m *StatusMap) Get(hostID string) (monitor.StatusRecord, bool) {
	rec, ok := m.Records[hostID]
	return rec, ok
}

// HostIDs returns the host identifiers present in the map, sorted.
func (m *StatusMap) HostIDs() []string {
	ids := make([]string, 0, len(m.Records))
	for id := range m.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON flattens records and metadata into a single JSON object.
func (m *StatusMap) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(m.Records)+len(m.Meta))
	for id, rec := range m.Records {
		if strings.HasPrefix(id, MetaPrefix) {
			return nil, fmt.Errorf("host id %q collides with the metadata namespace", id)
		}
		flat[id] = rec
	}
	for key, value := range m.Meta {
		flat[key] = value
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits a flat JSON object back into records and metadata by
// key prefix.
func (m *StatusMap) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	m.Records = make(map[string]monitor.StatusRecord, len(flat))
	m.Meta = make(map[string]string)

	for key, raw := range flat {
		if strings.HasPrefix(key, MetaPrefix) {
			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				return fmt.Errorf("metadata key %q: %w", key, err)
			}
			m.Meta[key] = value
			continue
		}
		var rec monitor.StatusRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("host record %q: %w", key, err)
		}
		m.Records[key] = rec
	}
	return nil
}
