package config

import "fmt"

// Rule decides how a task locates its source directory. The set of
// variants is closed: code dispatching on a Rule must type-switch over
// exactly these types and treat anything else as a programming error.
type Rule interface {
	isRule()
}

// VersionMatch selects the newest directory named
// "YYYY_MM_DD_HH_MM(Version)" whose parenthesized token equals Version.
type VersionMatch struct {
	Version string
}

// DateMatch looks up a directory whose name equals the current local time
// rendered with Format (a Go reference-time layout).
type DateMatch struct {
	Format string
}

func (VersionMatch) isRule() {}
func (DateMatch) isRule()    {}

// DefaultDateFormat is two-digit year, month, day (e.g. "260826").
const DefaultDateFormat = "060102"

// ruleSpec is the YAML shape of a Rule.
type ruleSpec struct {
	Type    string `yaml:"type"`
	Version string `yaml:"version,omitempty"`
	Format  string `yaml:"format,omitempty"`
}

func (r ruleSpec) rule() (Rule, error) {
	switch r.Type {
	case "version":
		if r.Version == "" {
			return nil, fmt.Errorf("version rule requires a version")
		}
		return VersionMatch{Version: r.Version}, nil
	case "date":
		format := r.Format
		if format == "" {
			format = DefaultDateFormat
		}
		return DateMatch{Format: format}, nil
	default:
		return nil, fmt.Errorf("unknown rule type %q", r.Type)
	}
}

func specFor(rule Rule) ruleSpec {
	switch r := rule.(type) {
	case VersionMatch:
		return ruleSpec{Type: "version", Version: r.Version}
	case DateMatch:
		return ruleSpec{Type: "date", Format: r.Format}
	default:
		panic(fmt.Sprintf("config: unhandled rule variant %T", rule))
	}
}
