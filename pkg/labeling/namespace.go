package labeling

import (
	"sort"
	"strings"
)

// Namespace returns the part of a label before its first "/", or "" when the
// label has no namespace.
func Namespace(label string) string {
	i := strings.Index(label, "/")
	if i <= 0 {
		return ""
	}
	return label[:i]
}

// MatchesNamespacePattern reports whether namespace is covered by a policy
// key. Keys are a bare namespace ("size"), a wildcard ("size/*"), or "*".
func MatchesNamespacePattern(namespace, policyPattern string) bool {
	if namespace == "" {
		return false
	}
	if policyPattern == "*" {
		return true
	}
	return strings.TrimSuffix(policyPattern, "/*") == namespace
}

// LabelMatchesPattern reports whether a concrete label falls under a
// namespace pattern returned in LabelDecisions.LabelsToRemove.
func LabelMatchesPattern(label, policyPattern string) bool {
	return MatchesNamespacePattern(Namespace(label), policyPattern)
}

// LabelsToRemove returns the replace-policy patterns covering any label in
// labelsToAdd. Additive namespaces are never returned.
func LabelsToRemove(labelsToAdd []string, policies map[string]Policy) []string {
	keys := make([]string, 0, len(policies))
	for k := range policies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[string]bool)
	out := []string{}
	for _, label := range labelsToAdd {
		ns := Namespace(label)
		if ns == "" {
			continue
		}
		for _, key := range keys {
			if policies[key] != PolicyReplace || seen[key] {
				continue
			}
			if MatchesNamespacePattern(ns, key) {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	return out
}
