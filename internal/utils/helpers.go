package utils

// MakeMap builds a tag map from alternating keys and values, as passed to Sentry reports.
// A trailing key without a value is ignored.
func MakeMap(keyValues ...string) map[string]string {
	m := make(map[string]string, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		m[keyValues[i]] = keyValues[i+1]
	}
	return m
}
