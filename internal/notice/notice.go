// Package notice defines validation notices and the container a validation run collects them in.
//
// A notice is a plain value: validators build one, hand it to a Container and never touch it
// again. Concrete notice types carry their context as exported, json-tagged fields.
package notice

// Notice describes one data problem found by a validator.
type Notice interface {
	// Code is the stable snake_case identifier of the notice kind.
	Code() string
	Severity() SeverityLevel
}
