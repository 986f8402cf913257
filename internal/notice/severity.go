package notice

import "fmt"

// SeverityLevel orders notices by importance: INFO < WARNING < ERROR.
type SeverityLevel int

const (
	SeverityInfo SeverityLevel = iota
	SeverityWarning
	SeverityError
)

func (s SeverityLevel) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return fmt.Sprintf("SeverityLevel(%d)", int(s))
	}
}

func (s SeverityLevel) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SeverityLevel) UnmarshalText(b []byte) error {
	switch string(b) {
	case "INFO":
		*s = SeverityInfo
	case "WARNING":
		*s = SeverityWarning
	case "ERROR":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity level %q", string(b))
	}
	return nil
}
