// Package domain defines the core business entities for clausewise.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: extracted text of an uploaded legal document
//   - Clause: a classified, non-overlapping span of that text
//   - RiskAssessment: the deterministic risk verdict for one clause
//   - SummarySet: the three summary tiers for a document
//   - DocumentAnalysis: the aggregate returned to callers
//   - ChatSession: question and answer turns about one analysis
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
