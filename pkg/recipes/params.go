package recipes

import (
	"strings"
	"time"
)

// Value is a synthesized recipe parameter value. The closed set of
// implementations replaces stringly-typed defaults with an explicit
// tagged union.
type Value interface {
	isValue()
	// Native returns the representation handed to the template engine.
	Native() any
}

// StringValue is a string parameter value.
type StringValue string

// IntValue is an integer parameter value.
type IntValue int

// DateValue is a date parameter value, rendered as YYYY-MM-DD.
type DateValue time.Time

func (StringValue) isValue() {}
func (IntValue) isValue()    {}
func (DateValue) isValue()   {}

func (v StringValue) Native() any { return string(v) }
func (v IntValue) Native() any    { return int(v) }
func (v DateValue) Native() any   { return time.Time(v).Format("2006-01-02") }

// defaultIntValue is used for integer parameters with no declared
// default.
const defaultIntValue = 365

// lookbackDays is the default analysis window for start dates.
const lookbackDays = 3 * 365

// SynthesizeParameters derives a full parameter set for a recipe from
// the disease under analysis:
//   - disease/keyword-named parameters take the disease name
//   - date parameters take today minus the lookback window ("start"
//     names) or today ("end" names and everything else)
//   - integer parameters take their declared default, else 365
//   - remaining string parameters take the empty string
func SynthesizeParameters(recipe *Recipe, diseaseName string, now time.Time) map[string]Value {
	params := make(map[string]Value, len(recipe.Parameters))

	for _, spec := range recipe.Parameters {
		nameLower := strings.ToLower(spec.Name)

		if strings.Contains(nameLower, "disease") || strings.Contains(nameLower, "keyword") {
			params[spec.Name] = StringValue(diseaseName)
			continue
		}

		switch spec.Type {
		case ParamDate:
			switch {
			case strings.Contains(nameLower, "start"):
				params[spec.Name] = DateValue(now.AddDate(0, 0, -lookbackDays))
			case strings.Contains(nameLower, "end"):
				params[spec.Name] = DateValue(now)
			default:
				params[spec.Name] = DateValue(now)
			}
		case ParamInteger:
			if spec.Default != nil {
				params[spec.Name] = IntValue(*spec.Default)
			} else {
				params[spec.Name] = IntValue(defaultIntValue)
			}
		default:
			params[spec.Name] = StringValue("")
		}
	}

	return params
}

// ToTemplateParams converts synthesized values into the plain map the
// template engine renders.
func ToTemplateParams(values map[string]Value) map[string]any {
	out := make(map[string]any, len(values))
	for name, v := range values {
		out[name] = v.Native()
	}
	return out
}
