package credit

import "fmt"

// Decision is the closed set of underwriting outcomes produced by the engine.
// The zero value is DecisionUnknown and is never produced by evaluation.
type Decision uint8

const (
	// DecisionUnknown marks an unset decision. It is not a valid outcome.
	DecisionUnknown Decision = iota

	// DecisionApprove means the application can be approved automatically.
	DecisionApprove

	// DecisionDecline means the application must be declined.
	DecisionDecline

	// DecisionRefer means there is insufficient automated evidence and a
	// human underwriter has to decide.
	DecisionRefer
)

var decisionNames = map[Decision]string{
	DecisionApprove: "approve",
	DecisionDecline: "decline",
	DecisionRefer:   "refer",
}

// ParseDecision parses the wire form of a decision ("approve", "decline", "refer").
func ParseDecision(s string) (Decision, error) {
	for d, name := range decisionNames {
		if name == s {
			return d, nil
		}
	}
	return DecisionUnknown, fmt.Errorf("unknown decision %q (valid: approve, decline, refer)", s)
}

// IsValid reports whether d is one of approve, decline or refer.
func (d Decision) IsValid() bool {
	_, ok := decisionNames[d]
	return ok
}

// String returns the wire form of the decision.
func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (d Decision) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid decision %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decision) UnmarshalText(text []byte) error {
	parsed, err := ParseDecision(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DecisionSource records who produced a historical decision.
type DecisionSource string

const (
	// SourceManual is a decision taken by a human underwriter.
	SourceManual DecisionSource = "manual"

	// SourceAuto is a decision taken by an automated system.
	SourceAuto DecisionSource = "auto"
)

// IsValid reports whether s is a known decision source.
func (s DecisionSource) IsValid() bool {
	return s == SourceManual || s == SourceAuto
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *DecisionSource) UnmarshalText(text []byte) error {
	src := DecisionSource(text)
	if !src.IsValid() {
		return fmt.Errorf("unknown decision source %q (valid: manual, auto)", string(text))
	}
	*s = src
	return nil
}
