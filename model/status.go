package model

import (
	corev1 "k8s.io/api/core/v1"
)

// Namespace status values form a closed enumeration; constructing them
// through these helpers instead of free-form strings keeps typos out of
// stored state. The phase constants come from the canonical API types.

// ActiveNamespaceStatus returns the status sub-structure of a namespace
// in the Active phase.
func ActiveNamespaceStatus() map[string]interface{} {
	return map[string]interface{}{"phase": string(corev1.NamespaceActive)}
}

// TerminatingNamespaceStatus returns the status sub-structure of a
// namespace that is being torn down.
func TerminatingNamespaceStatus() map[string]interface{} {
	return map[string]interface{}{"phase": string(corev1.NamespaceTerminating)}
}
