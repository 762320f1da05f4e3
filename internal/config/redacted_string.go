package config

import "fmt"

// RedactedString is a string that does not print its value in logs or when
// it is serialized. Used for passwords and DSNs.
type RedactedString string

func (r RedactedString) redacted() string {
	return fmt.Sprintf("<redacted-%d-chars>", len(r))
}

func (r RedactedString) String() string {
	return r.redacted()
}

func (r RedactedString) MarshalText() ([]byte, error) {
	return []byte(r.redacted()), nil
}

func (r RedactedString) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", r.redacted())), nil
}

func (r RedactedString) MarshalBinary() ([]byte, error) {
	return []byte(r.redacted()), nil
}
