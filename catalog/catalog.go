// Package catalog is the static registry of workflow node kinds. Every node
// kind that can appear on the editing canvas has exactly one Definition here:
// display metadata, the default configuration object, and the ordered field
// schema the configuration editor renders. Palette and editor code derive
// entirely from this registry; nothing outside it branches on a node kind.
package catalog

// Kind identifies a node type within a workflow.
type Kind string

const (
	KindStart     Kind = "start"
	KindNmap      Kind = "nmap"
	KindHTTPProbe Kind = "http-probe"
	KindParser    Kind = "parser"
	KindGitleaks  Kind = "gitleaks"
	KindSlack     Kind = "slack"
	KindDiscord   Kind = "discord"
	KindReport    Kind = "report"
	KindDelay     Kind = "delay"
	KindCondition Kind = "condition"
)

// Category groups node kinds for palette display.
type Category string

const (
	CategoryRecon     Category = "recon"
	CategoryAnalysis  Category = "analysis"
	CategorySecurity  Category = "security"
	CategoryOutput    Category = "output"
	CategoryUtilities Category = "utilities"
)

// Categories lists all categories in palette order.
func Categories() []Category {
	return []Category{CategoryRecon, CategoryAnalysis, CategorySecurity, CategoryOutput, CategoryUtilities}
}

// FieldType describes how a configuration field is edited. The three list
// shapes (target lists, rule tables, section checklists) are first-class
// field types so the editor never has to switch on a field's name.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextarea    FieldType = "textarea"
	FieldSelect      FieldType = "select"
	FieldCheckbox    FieldType = "checkbox"
	FieldExpr        FieldType = "expr"
	FieldTargetList  FieldType = "target-list"
	FieldRuleTable   FieldType = "rule-table"
	FieldSectionList FieldType = "section-list"
)

// Field is one entry in a node kind's configuration schema.
type Field struct {
	Name        string
	Label       string
	Type        FieldType
	Options     []string // for FieldSelect
	Placeholder string
}

// Definition is the static description of one node kind.
type Definition struct {
	Kind          Kind
	Label         string
	Category      Category
	Description   string
	DefaultConfig map[string]any
	Fields        []Field
}

// ReportSections is the fixed universe of sections a report node may include.
var ReportSections = []string{"summary", "findings", "recommendations", "raw-data"}

// paletteOrder fixes the order kinds are presented in.
var paletteOrder = []Kind{
	KindStart, KindNmap, KindHTTPProbe, KindParser, KindGitleaks,
	KindSlack, KindDiscord, KindReport, KindDelay, KindCondition,
}

var definitions = map[Kind]Definition{
	KindStart: {
		Kind:          KindStart,
		Label:         "Start",
		Category:      CategoryUtilities,
		Description:   "Workflow entry point",
		DefaultConfig: map[string]any{},
		Fields:        nil,
	},
	KindNmap: {
		Kind:        KindNmap,
		Label:       "Nmap Scan",
		Category:    CategoryRecon,
		Description: "Network port scanning",
		DefaultConfig: map[string]any{
			"targets": []string{},
			"profile": "quick",
			"flags":   "-sV",
		},
		Fields: []Field{
			{Name: "targets", Label: "Target(s)", Type: FieldTargetList, Placeholder: "e.g., 10.0.2.3, 192.168.1.0/24"},
			{Name: "profile", Label: "Scan Profile", Type: FieldSelect, Options: []string{"quick", "deep", "udp", "custom"}},
			{Name: "flags", Label: "Additional Flags", Type: FieldTextarea, Placeholder: "e.g., -sV -O -A"},
		},
	},
	KindHTTPProbe: {
		Kind:        KindHTTPProbe,
		Label:       "HTTP Probe",
		Category:    CategoryRecon,
		Description: "HTTP/HTTPS service discovery",
		DefaultConfig: map[string]any{
			"timeout":         "5",
			"followRedirects": true,
		},
		Fields: []Field{
			{Name: "timeout", Label: "Timeout (seconds)", Type: FieldText, Placeholder: "5"},
			{Name: "followRedirects", Label: "Follow Redirects", Type: FieldCheckbox},
		},
	},
	KindParser: {
		Kind:        KindParser,
		Label:       "Parser/Rules",
		Category:    CategoryAnalysis,
		Description: "Parse and apply detection rules",
		DefaultConfig: map[string]any{
			"rules": []map[string]any{},
		},
		Fields: []Field{
			{Name: "rules", Label: "Detection Rules", Type: FieldRuleTable, Placeholder: "Add rules"},
		},
	},
	KindGitleaks: {
		Kind:        KindGitleaks,
		Label:       "Gitleaks",
		Category:    CategorySecurity,
		Description: "Secret scanning in repositories",
		DefaultConfig: map[string]any{
			"repoUrl": "",
			"branch":  "main",
		},
		Fields: []Field{
			{Name: "repoUrl", Label: "Repository URL", Type: FieldText, Placeholder: "https://github.com/user/repo"},
			{Name: "branch", Label: "Branch", Type: FieldText, Placeholder: "main"},
		},
	},
	KindSlack: {
		Kind:        KindSlack,
		Label:       "Slack Alert",
		Category:    CategoryOutput,
		Description: "Send notifications to Slack",
		DefaultConfig: map[string]any{
			"webhookUrl": "",
			"message":    "[ShipSec] Recon results for {{target}}",
		},
		Fields: []Field{
			{Name: "webhookUrl", Label: "Webhook URL", Type: FieldText, Placeholder: "https://hooks.slack.com/services/..."},
			{Name: "message", Label: "Message Template", Type: FieldTextarea, Placeholder: "Use {{target}}, {{ports}}, {{findings}}"},
		},
	},
	KindDiscord: {
		Kind:        KindDiscord,
		Label:       "Discord Alert",
		Category:    CategoryOutput,
		Description: "Send notifications to Discord",
		DefaultConfig: map[string]any{
			"webhookUrl": "",
			"message":    "**ShipSec Alert**\nScan complete",
		},
		Fields: []Field{
			{Name: "webhookUrl", Label: "Webhook URL", Type: FieldText, Placeholder: "https://discord.com/api/webhooks/..."},
			{Name: "message", Label: "Message Template", Type: FieldTextarea, Placeholder: "Markdown supported"},
		},
	},
	KindReport: {
		Kind:        KindReport,
		Label:       "Report Export",
		Category:    CategoryOutput,
		Description: "Generate PDF reports",
		DefaultConfig: map[string]any{
			"title":           "Security Report",
			"includeSections": []string{"summary", "findings", "recommendations"},
		},
		Fields: []Field{
			{Name: "title", Label: "Report Title", Type: FieldText, Placeholder: "Security Assessment Report"},
			{Name: "includeSections", Label: "Include Sections", Type: FieldSectionList},
		},
	},
	KindDelay: {
		Kind:        KindDelay,
		Label:       "Delay",
		Category:    CategoryUtilities,
		Description: "Wait before continuing",
		DefaultConfig: map[string]any{
			"duration": "5",
		},
		Fields: []Field{
			{Name: "duration", Label: "Duration (seconds)", Type: FieldText, Placeholder: "5"},
		},
	},
	KindCondition: {
		Kind:        KindCondition,
		Label:       "Condition",
		Category:    CategoryUtilities,
		Description: "Conditional branching",
		DefaultConfig: map[string]any{
			"condition": "",
		},
		Fields: []Field{
			{Name: "condition", Label: "Condition Expression", Type: FieldExpr, Placeholder: "e.g., len(findings) > 0"},
		},
	},
}

// Lookup returns the definition for kind. The second return is false for a
// kind outside the registry.
func Lookup(kind Kind) (Definition, bool) {
	def, ok := definitions[kind]
	return def, ok
}

// Kinds returns all registered kinds in palette order.
func Kinds() []Kind {
	out := make([]Kind, len(paletteOrder))
	copy(out, paletteOrder)
	return out
}

// All returns every definition in palette order.
func All() []Definition {
	out := make([]Definition, 0, len(paletteOrder))
	for _, k := range paletteOrder {
		out = append(out, definitions[k])
	}
	return out
}

// ByCategory returns the definitions belonging to cat, in palette order.
func ByCategory(cat Category) []Definition {
	var out []Definition
	for _, k := range paletteOrder {
		if def := definitions[k]; def.Category == cat {
			out = append(out, def)
		}
	}
	return out
}

// NewConfig returns a fresh deep copy of the definition's default
// configuration, safe for the caller to mutate.
func (d Definition) NewConfig() map[string]any {
	return CopyConfig(d.DefaultConfig)
}

// Field returns the schema entry named name.
func (d Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// CopyConfig deep-copies a configuration object. Configuration values are
// JSON-shaped: scalars, string slices, []any, and nested string-keyed maps.
func CopyConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CopyConfig(val)
	case []string:
		return append([]string(nil), val...)
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, m := range val {
			out[i] = CopyConfig(m)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
