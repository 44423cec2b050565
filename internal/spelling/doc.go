// Package spelling provides the value types for annotated spellings.
//
// This package contains type definitions and the two annotation-combining
// rules only. All other internal packages import spelling; spelling imports
// nothing internal. This ensures it remains the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Annotation is an immutable value compared by structural equality
//   - Accumulate and Merge are distinct and MUST NOT be unified:
//     Accumulate is applied once, when a derived spelling is created from a
//     rule output; Merge is applied whenever two independently produced
//     annotations for the same (syllable, text) pair collide afterwards.
//     Unifying them changes output credibility values.
//   - Merge is commutative and associative, which is what makes concurrent
//     fills order-independent (see internal/algebra).
package spelling
