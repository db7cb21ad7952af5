package enums

import "fmt"

// LogKind distinguishes waste logs from material usage logs.
type LogKind string

const (
	LogKindWaste    LogKind = "waste"
	LogKindMaterial LogKind = "material"
)

var validLogKinds = []LogKind{
	LogKindWaste,
	LogKindMaterial,
}

// String implements fmt.Stringer.
func (k LogKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known log kind.
func (k LogKind) IsValid() bool {
	for _, candidate := range validLogKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseLogKind converts raw input into LogKind.
func ParseLogKind(value string) (LogKind, error) {
	for _, candidate := range validLogKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid log kind %q", value)
}
