package security

// ACLEntry is one access rule: a function-id pattern, a caller-language
// pattern, an optional caller-context pattern, the permissions required
// to pass, and an enabled flag. Per spec.md §4.3, only exact strings and
// the literal glob `*` (matching anything) are supported in any pattern
// field — mixed globs are treated as literals.
type ACLEntry struct {
	FunctionPattern       string
	CallerLanguagePattern string
	CallerContextPattern  string // empty matches any context
	Required              Permission
	Enabled               bool
}

func matchPattern(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

// Matches reports whether entry applies to a call with the given
// function name, caller language, and caller context.
func (entry ACLEntry) Matches(functionName, callerLanguage, callerContext string) bool {
	if !entry.Enabled {
		return false
	}
	if !matchPattern(entry.FunctionPattern, functionName) {
		return false
	}
	if !matchPattern(entry.CallerLanguagePattern, callerLanguage) {
		return false
	}
	if entry.CallerContextPattern != "" && !matchPattern(entry.CallerContextPattern, callerContext) {
		return false
	}
	return true
}

// firstMatch returns the first enabled entry (declaration order) that
// matches, and whether one was found.
func firstMatch(entries []ACLEntry, functionName, callerLanguage, callerContext string) (ACLEntry, bool) {
	for _, e := range entries {
		if e.Matches(functionName, callerLanguage, callerContext) {
			return e, true
		}
	}
	return ACLEntry{}, false
}
