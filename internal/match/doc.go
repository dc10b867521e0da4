// Package match provides name normalization, Levenshtein distance calculation
// and ranking of known names against a requested one.
//
// Key functions:
//   - NormalizeIdent, NormalizeStem: normalize identifiers for fuzzy matching
//   - Distance, Similarity, Score: edit distance and derived similarity
//   - RankNames: ranks known names by similarity
//   - Suggest: picks "did you mean" hints for an unknown name
package match
