package recipes

// NotFoundSentinel marks a required parameter with no extracted value.
// The template engine later rewrites it to a null substitution.
const NotFoundSentinel = "[NOT_FOUND]"

// ValidateParameters checks extracted parameter values against a
// recipe's parameter specs and returns a normalized set: extracted
// values pass through, declared defaults fill gaps, and parameters with
// neither get the not-found sentinel.
func ValidateParameters(recipe *Recipe, extracted map[string]any) map[string]any {
	validated := make(map[string]any, len(recipe.Parameters))

	for _, spec := range recipe.Parameters {
		if v, ok := extracted[spec.Name]; ok {
			validated[spec.Name] = v
			continue
		}
		if spec.Default != nil {
			validated[spec.Name] = *spec.Default
			continue
		}
		validated[spec.Name] = NotFoundSentinel
	}

	return validated
}
