// Package diagnostic provides structured warnings, errors, and
// "why this was excluded" explanations for the property mapper.
//
// Key capabilities:
//   - Transient property explanations
//   - Denylisted names kept by explicit metadata
//   - Unknown type reports with "did you mean" suggestions
//   - Configuration file validation
package diagnostic
