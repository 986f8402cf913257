package notice

import (
	"github.com/goccy/go-json"
)

// record is the serialized shape of one notice.
type record struct {
	Code     string        `json:"code"`
	Severity SeverityLevel `json:"severity"`
	Fields   Notice        `json:"fields"`
}

// MarshalNotices encodes notices as a JSON array of {code, severity, fields} objects,
// where fields is the json encoding of the concrete notice value.
func MarshalNotices(notices []Notice) ([]byte, error) {
	records := make([]record, 0, len(notices))
	for _, n := range notices {
		records = append(records, record{Code: n.Code(), Severity: n.Severity(), Fields: n})
	}
	return json.Marshal(records)
}

// MarshalJSON encodes the container the same way as MarshalNotices.
func (c *Container) MarshalJSON() ([]byte, error) {
	return MarshalNotices(c.Notices())
}
