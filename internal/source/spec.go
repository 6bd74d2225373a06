package source

import (
	"fmt"
	"strconv"
	"strings"
)

// Spec is one parsed source identifier:
//
//	name[:split=a+b][:num=N][:concat[=false]][:apply_chat_template[=false]]
type Spec struct {
	Name              string
	Splits            []string
	Num               *int
	Concat            bool
	ApplyChatTemplate bool
	Raw               string
}

// SpecError reports a malformed identifier.
type SpecError struct {
	Raw    string
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid source identifier %q: %s", e.Raw, e.Reason)
}

// ParseSpec parses a single identifier.
func ParseSpec(raw string) (Spec, error) {
	raw = strings.TrimSpace(raw)
	name, opts, _ := strings.Cut(raw, ":")
	spec := Spec{Name: strings.TrimSpace(name), Raw: raw}
	if spec.Name == "" {
		return Spec{}, &SpecError{Raw: raw, Reason: "empty source name"}
	}
	if opts == "" {
		return spec, nil
	}
	for opt := range strings.SplitSeq(opts, ":") {
		key, value, hasValue := strings.Cut(opt, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "split":
			if value == "" {
				return Spec{}, &SpecError{Raw: raw, Reason: "split needs a value"}
			}
			for s := range strings.SplitSeq(value, "+") {
				if s = strings.TrimSpace(s); s != "" {
					spec.Splits = append(spec.Splits, s)
				}
			}
		case "num":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return Spec{}, &SpecError{Raw: raw, Reason: fmt.Sprintf("num must be a non-negative integer, got %q", value)}
			}
			spec.Num = &n
		case "concat":
			spec.Concat = flagValue(value, hasValue)
		case "apply_chat_template":
			spec.ApplyChatTemplate = flagValue(value, hasValue)
		default:
			return Spec{}, &SpecError{Raw: raw, Reason: fmt.Sprintf("unknown option %q", key)}
		}
	}
	return spec, nil
}

// flagValue: a bare key or any value other than "false" enables the option.
func flagValue(value string, hasValue bool) bool {
	return !hasValue || !strings.EqualFold(value, "false")
}

// ParseSpecs parses a comma-joined identifier list.
func ParseSpecs(list string) ([]Spec, error) {
	var specs []Spec
	for raw := range strings.SplitSeq(list, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		spec, err := ParseSpec(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, &SpecError{Raw: list, Reason: "no sources given"}
	}
	return specs, nil
}

// String renders the identifier in canonical form.
func (s Spec) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	if len(s.Splits) > 0 {
		b.WriteString(":split=" + strings.Join(s.Splits, "+"))
	}
	if s.Num != nil {
		b.WriteString(":num=" + strconv.Itoa(*s.Num))
	}
	if s.Concat {
		b.WriteString(":concat=true")
	}
	if s.ApplyChatTemplate {
		b.WriteString(":apply_chat_template=true")
	}
	return b.String()
}
