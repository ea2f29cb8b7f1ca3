package credit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// DeclineReason is a reason recorded with a historical manual decline.
type DeclineReason struct {
	Code         string `json:"code" yaml:"code"`
	Description  string `json:"description" yaml:"description"`
	ECOACategory string `json:"ecoa_category,omitempty" yaml:"ecoa_category,omitempty"`
}

// Keys of an application object that are not underwriting attributes.
const (
	fieldApplicationID  = "application_id"
	fieldSubmittedAt    = "application_datetime"
	fieldDecisionSource = "decision_source"
	fieldFinalDecision  = "final_decision"
	fieldManualDeclines = "manual_decline_reasons"
)

// Application is an immutable snapshot of a loan request. It is created by
// decoding or by NewApplication and is never mutated by the engine.
type Application struct {
	// ID uniquely identifies the application within a batch.
	ID string

	// SubmittedAt is when the application was received, if known.
	SubmittedAt *time.Time

	// DecisionSource records who took the historical decision, if any.
	DecisionSource *DecisionSource

	// FinalDecision is the historical decision (approve or decline), if any.
	FinalDecision *Decision

	// ManualDeclineReasons are the reasons recorded with a manual decline.
	ManualDeclineReasons []DeclineReason

	attrs map[string]Value
}

// NewApplication creates an application from already-typed attributes.
// Known attributes are checked against Schema; the map is copied.
func NewApplication(id string, attrs map[string]Value) *Application {
	app := &Application{
		ID:    id,
		attrs: make(map[string]Value, len(attrs)),
	}
	for name, v := range attrs {
		app.attrs[name] = normalizeAttribute(name, v)
	}
	return app
}

// Attribute resolves an attribute by name.
func (a *Application) Attribute(name string) (Value, bool) {
	v, ok := a.attrs[name]
	return v, ok
}

// AttributeNames returns the names of the application's attributes in sorted order.
func (a *Application) AttributeNames() []string {
	names := make([]string, 0, len(a.attrs))
	for name := range a.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasManualDecision reports whether a historical approve/decline is recorded.
func (a *Application) HasManualDecision() bool {
	return a.FinalDecision != nil
}

// DecodeApplication builds an application from a decoded JSON or YAML object.
// Attribute values are typed leniently: a value that does not match Schema is
// kept as malformed rather than rejected. Errors are returned only for the
// identity and label fields, which cannot be represented otherwise.
func DecodeApplication(fields map[string]any) (*Application, error) {
	app := &Application{attrs: make(map[string]Value, len(fields))}

	for key, raw := range fields {
		switch key {
		case fieldApplicationID:
			id, err := decodeID(raw)
			if err != nil {
				return nil, err
			}
			app.ID = id

		case fieldSubmittedAt:
			ts, err := decodeTime(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fieldSubmittedAt, err)
			}
			app.SubmittedAt = ts

		case fieldDecisionSource:
			if raw == nil {
				continue
			}
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string, got %T", fieldDecisionSource, raw)
			}
			var src DecisionSource
			if err := src.UnmarshalText([]byte(s)); err != nil {
				return nil, err
			}
			app.DecisionSource = &src

		case fieldFinalDecision:
			if raw == nil {
				continue
			}
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string, got %T", fieldFinalDecision, raw)
			}
			d, err := ParseDecision(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fieldFinalDecision, err)
			}
			app.FinalDecision = &d

		case fieldManualDeclines:
			reasons, err := decodeDeclineReasons(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fieldManualDeclines, err)
			}
			app.ManualDeclineReasons = reasons

		default:
			app.attrs[key] = normalizeAttribute(key, ValueOf(raw))
		}
	}

	return app, nil
}

// UnmarshalJSON implements json.Unmarshaler using DecodeApplication.
func (a *Application) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("application must be an object")
	}

	decoded, err := DecodeApplication(fields)
	if err != nil {
		return err
	}
	*a = *decoded
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler using DecodeApplication.
func (a *Application) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: application must be a mapping", node.Line)
	}

	var fields map[string]any
	if err := node.Decode(&fields); err != nil {
		return err
	}

	decoded, err := DecodeApplication(fields)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = *decoded
	return nil
}

// MarshalJSON flattens the application back into its wire object.
// Malformed attributes are omitted.
func (a *Application) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.attrs)+5)
	for name, v := range a.attrs {
		if v.Kind() == KindMalformed {
			continue
		}
		out[name] = v.Interface()
	}
	out[fieldApplicationID] = a.ID
	if a.SubmittedAt != nil {
		out[fieldSubmittedAt] = a.SubmittedAt.Format(time.RFC3339)
	}
	if a.DecisionSource != nil {
		out[fieldDecisionSource] = string(*a.DecisionSource)
	}
	if a.FinalDecision != nil {
		out[fieldFinalDecision] = a.FinalDecision.String()
	}
	if len(a.ManualDeclineReasons) > 0 {
		out[fieldManualDeclines] = a.ManualDeclineReasons
	}
	return json.Marshal(out)
}

func normalizeAttribute(name string, v Value) Value {
	if spec, ok := LookupAttribute(name); ok {
		return spec.checkKind(v)
	}
	return v
}

func decodeID(raw any) (string, error) {
	switch id := raw.(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	case int, int64:
		return fmt.Sprint(id), nil
	default:
		return "", fmt.Errorf("%s must be a string, got %T", fieldApplicationID, raw)
	}
}

func decodeTime(raw any) (*time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		return &t, nil
	default:
		return nil, fmt.Errorf("must be an RFC3339 timestamp, got %T", raw)
	}
}

func decodeDeclineReasons(raw any) ([]DeclineReason, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list, got %T", raw)
	}

	reasons := make([]DeclineReason, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d must be an object, got %T", i, item)
		}
		var r DeclineReason
		if code, ok := m["code"].(string); ok {
			r.Code = code
		}
		if desc, ok := m["description"].(string); ok {
			r.Description = desc
		}
		if cat, ok := m["ecoa_category"].(string); ok {
			r.ECOACategory = cat
		}
		if r.Code == "" {
			return nil, fmt.Errorf("item %d has no code", i)
		}
		reasons = append(reasons, r)
	}
	return reasons, nil
}
