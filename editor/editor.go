// Package editor edits one node's configuration object against its catalog
// schema. Edits accumulate in a Draft that never touches the graph model;
// the draft is committed as a complete replacement configuration only on an
// explicit Apply, and discarded otherwise.
package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/shipsec/reconcraft/catalog"
	"github.com/shipsec/reconcraft/graph"
)

var (
	// ErrUnknownField is returned for a field name absent from the schema.
	ErrUnknownField = errors.New("field not in schema")
	// ErrWrongFieldType is returned when a setter is used on a field of an
	// incompatible schema type.
	ErrWrongFieldType = errors.New("wrong field type")
	// ErrInvalidOption is returned when a select value is outside the
	// schema's options list.
	ErrInvalidOption = errors.New("value not in options")
	// ErrUnknownSection is returned for a section name outside the report
	// section universe.
	ErrUnknownSection = errors.New("unknown report section")
	// ErrRuleIndex is returned for an out-of-range rule row index.
	ErrRuleIndex = errors.New("rule index out of range")
)

// Rule is one detection-rule row of a parser node.
type Rule struct {
	Service  string `json:"service"`
	Version  string `json:"version"`
	Note     string `json:"note"`
	Severity string `json:"severity"`
}

// defaultRule is the template row appended by AppendRule.
var defaultRule = Rule{Service: "ssh", Version: "*", Note: "Service detected", Severity: "low"}

// ApplyFunc receives the committed replacement configuration and label for a
// node when a draft is applied.
type ApplyFunc func(nodeID string, config map[string]any, label string)

// Draft holds in-progress edits to one node's configuration. It starts as a
// deep copy of the node's current configuration.
type Draft struct {
	nodeID  string
	def     catalog.Definition
	label   string
	config  map[string]any
	onApply ApplyFunc
}

// NewDraft opens a draft for the given node. onApply is invoked exactly once
// if and when the draft is applied.
func NewDraft(node graph.Node, def catalog.Definition, onApply ApplyFunc) *Draft {
	cfg := catalog.CopyConfig(node.Config)
	if cfg == nil {
		// A backend payload may omit a node's config entirely.
		cfg = map[string]any{}
	}
	return &Draft{
		nodeID:  node.ID,
		def:     def,
		label:   node.Label,
		config:  cfg,
		onApply: onApply,
	}
}

// NodeID returns the id of the node being edited.
func (d *Draft) NodeID() string { return d.nodeID }

// Definition returns the catalog definition the draft is edited against.
func (d *Draft) Definition() catalog.Definition { return d.def }

// Label returns the draft's display label.
func (d *Draft) Label() string { return d.label }

// Config returns a copy of the draft configuration as it currently stands.
func (d *Draft) Config() map[string]any { return catalog.CopyConfig(d.config) }

// SetLabel updates the node's display label in the draft.
func (d *Draft) SetLabel(label string) { d.label = label }

// SetText sets a free-form string field (text, textarea, or expression).
// The value passes through unmodified; expression fields are validated at
// apply time.
func (d *Draft) SetText(field, value string) error {
	f, err := d.field(field, catalog.FieldText, catalog.FieldTextarea, catalog.FieldExpr)
	if err != nil {
		return err
	}
	d.config[f.Name] = value
	return nil
}

// SetSelect sets a select field to one of its schema options.
func (d *Draft) SetSelect(field, value string) error {
	f, err := d.field(field, catalog.FieldSelect)
	if err != nil {
		return err
	}
	for _, opt := range f.Options {
		if opt == value {
			d.config[f.Name] = value
			return nil
		}
	}
	return fmt.Errorf("field %q: %w: %q", field, ErrInvalidOption, value)
}

// SetBool sets a checkbox field.
func (d *Draft) SetBool(field string, value bool) error {
	f, err := d.field(field, catalog.FieldCheckbox)
	if err != nil {
		return err
	}
	d.config[f.Name] = value
	return nil
}

// SetTargets sets a target-list field from newline-delimited raw input:
// each line is trimmed and blank lines are dropped, order preserved.
func (d *Draft) SetTargets(field, raw string) error {
	f, err := d.field(field, catalog.FieldTargetList)
	if err != nil {
		return err
	}
	targets := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			targets = append(targets, t)
		}
	}
	d.config[f.Name] = targets
	return nil
}

// Targets returns the current value of a target-list field.
func (d *Draft) Targets(field string) ([]string, error) {
	f, err := d.field(field, catalog.FieldTargetList)
	if err != nil {
		return nil, err
	}
	return stringsFromConfig(d.config[f.Name]), nil
}

// AppendRule appends the default rule row to a rule-table field.
func (d *Draft) AppendRule(field string) error {
	f, err := d.field(field, catalog.FieldRuleTable)
	if err != nil {
		return err
	}
	rules := rulesFromConfig(d.config[f.Name])
	d.config[f.Name] = rulesToConfig(append(rules, defaultRule))
	return nil
}

// RemoveRule deletes the rule row at index i from a rule-table field.
func (d *Draft) RemoveRule(field string, i int) error {
	f, err := d.field(field, catalog.FieldRuleTable)
	if err != nil {
		return err
	}
	rules := rulesFromConfig(d.config[f.Name])
	if i < 0 || i >= len(rules) {
		return fmt.Errorf("field %q: %w: %d of %d", field, ErrRuleIndex, i, len(rules))
	}
	d.config[f.Name] = rulesToConfig(append(rules[:i], rules[i+1:]...))
	return nil
}

// Rules returns the current rows of a rule-table field.
func (d *Draft) Rules(field string) ([]Rule, error) {
	f, err := d.field(field, catalog.FieldRuleTable)
	if err != nil {
		return nil, err
	}
	return rulesFromConfig(d.config[f.Name]), nil
}

// ToggleSection adds the section to a section-list field if absent, or
// removes it if present. The section must be in the report section universe.
func (d *Draft) ToggleSection(field, section string) error {
	f, err := d.field(field, catalog.FieldSectionList)
	if err != nil {
		return err
	}
	known := false
	for _, s := range catalog.ReportSections {
		if s == section {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("field %q: %w: %q", field, ErrUnknownSection, section)
	}

	current := stringsFromConfig(d.config[f.Name])
	for i, s := range current {
		if s == section {
			d.config[f.Name] = append(current[:i], current[i+1:]...)
			return nil
		}
	}
	d.config[f.Name] = append(current, section)
	return nil
}

// Apply validates the draft, commits it through the apply callback, and
// returns the replacement configuration. Expression fields must compile;
// a failure leaves the draft open and nothing committed.
func (d *Draft) Apply() (map[string]any, error) {
	for _, f := range d.def.Fields {
		if f.Type != catalog.FieldExpr {
			continue
		}
		src, _ := d.config[f.Name].(string)
		if src == "" {
			continue
		}
		if _, err := expr.Compile(src, expr.AllowUndefinedVariables()); err != nil {
			return nil, fmt.Errorf("field %q: invalid expression: %w", f.Name, err)
		}
	}

	cfg := catalog.CopyConfig(d.config)
	if d.onApply != nil {
		d.onApply(d.nodeID, catalog.CopyConfig(cfg), d.label)
	}
	return cfg, nil
}

// Discard abandons the draft. The underlying node is untouched; the draft
// must not be used afterwards.
func (d *Draft) Discard() {
	d.config = nil
	d.onApply = nil
}

func (d *Draft) field(name string, want ...catalog.FieldType) (catalog.Field, error) {
	f, ok := d.def.Field(name)
	if !ok {
		return catalog.Field{}, fmt.Errorf("%w: %q on kind %q", ErrUnknownField, name, d.def.Kind)
	}
	for _, t := range want {
		if f.Type == t {
			return f, nil
		}
	}
	return catalog.Field{}, fmt.Errorf("field %q: %w: have %s", name, ErrWrongFieldType, f.Type)
}

// stringsFromConfig tolerates both []string (locally built configs) and
// []any (configs decoded from backend JSON).
func stringsFromConfig(v any) []string {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func rulesFromConfig(v any) []Rule {
	var rows []map[string]any
	switch val := v.(type) {
	case []map[string]any:
		rows = val
	case []any:
		for _, e := range val {
			if m, ok := e.(map[string]any); ok {
				rows = append(rows, m)
			}
		}
	}
	out := make([]Rule, 0, len(rows))
	for _, m := range rows {
		r := Rule{}
		r.Service, _ = m["service"].(string)
		r.Version, _ = m["version"].(string)
		r.Note, _ = m["note"].(string)
		r.Severity, _ = m["severity"].(string)
		out = append(out, r)
	}
	return out
}

// rulesToConfig stores rules as generic maps so the configuration object
// stays JSON-shaped regardless of whether it came from the backend.
func rulesToConfig(rules []Rule) []map[string]any {
	out := make([]map[string]any, len(rules))
	for i, r := range rules {
		out[i] = map[string]any{
			"service":  r.Service,
			"version":  r.Version,
			"note":     r.Note,
			"severity": r.Severity,
		}
	}
	return out
}
