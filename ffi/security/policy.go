package security

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy is the serialized security policy document (spec.md §6): two
// top-level sections, isolation levels per language and permission
// grants per resource tag. What's normative is this information content
// and first-match ACL semantics, not the serialization format — this
// implementation uses YAML.
type Policy struct {
	Isolation   map[string]Level    `yaml:"isolation"`
	Permissions map[string][]string `yaml:"permissions"`
}

// DefaultPolicy returns an empty policy: every language defaults to
// LevelNone isolation and no resource grants (so effective access is
// governed entirely by default-deny/allow and explicit ACL entries).
func DefaultPolicy() Policy {
	return Policy{
		Isolation:   map[string]Level{},
		Permissions: map[string][]string{},
	}
}

// LoadPolicy reads and parses a policy document from path.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, err
	}
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, err
	}
	if p.Isolation == nil {
		p.Isolation = map[string]Level{}
	}
	if p.Permissions == nil {
		p.Permissions = map[string][]string{}
	}
	return p, nil
}

// Save serializes the policy to path.
func (p Policy) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// IsolationFor returns the declared isolation level for language, or
// LevelNone if the policy does not mention it.
func (p Policy) IsolationFor(language string) Level {
	if lvl, ok := p.Isolation[language]; ok && lvl.Valid() {
		return lvl
	}
	return LevelNone
}

// GrantedPermissions computes the permission bitset language (optionally
// qualified by context, e.g. "restricted") is granted under this policy:
// a resource tag is granted if its language list contains "*", the bare
// language label, or "language:context" matching the supplied context.
func (p Policy) GrantedPermissions(language, context string) Permission {
	var granted Permission
	for tag, labels := range p.Permissions {
		bit, ok := ParsePermissionTag(tag)
		if !ok {
			continue
		}
		for _, label := range labels {
			if label == "*" || label == language {
				granted |= bit
				break
			}
			if context != "" {
				if lang, suffix, found := strings.Cut(label, ":"); found && lang == language && suffix == context {
					granted |= bit
					break
				}
			}
		}
	}
	return granted
}
