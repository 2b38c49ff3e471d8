package domain

// Segmentation confidence tiers.
const (
	// SegmentationConfidenceStructural applies to spans bounded by explicit
	// section headers, numbering or paragraph breaks.
	SegmentationConfidenceStructural = 0.9

	// SegmentationConfidenceFallback applies to spans cut at sentence boundaries.
	SegmentationConfidenceFallback = 0.6
)

// ClauseType is the semantic category of a clause.
type ClauseType string

// Known clause types, listed in classification priority order.
const (
	ClauseTypePayment              ClauseType = "payment"
	ClauseTypeLiability            ClauseType = "liability"
	ClauseTypeTermination          ClauseType = "termination"
	ClauseTypeConfidentiality      ClauseType = "confidentiality"
	ClauseTypeIntellectualProperty ClauseType = "intellectual_property"
	ClauseTypeDisputeResolution    ClauseType = "dispute_resolution"
	ClauseTypeGoverningLaw         ClauseType = "governing_law"
	ClauseTypeWarranty             ClauseType = "warranty"
	ClauseTypeDefinition           ClauseType = "definition"
	ClauseTypeGeneral              ClauseType = "general"
)

// AllClauseTypes returns every clause type in classification priority order.
func AllClauseTypes() []ClauseType {
	return []ClauseType{
		ClauseTypePayment,
		ClauseTypeLiability,
		ClauseTypeTermination,
		ClauseTypeConfidentiality,
		ClauseTypeIntellectualProperty,
		ClauseTypeDisputeResolution,
		ClauseTypeGoverningLaw,
		ClauseTypeWarranty,
		ClauseTypeDefinition,
		ClauseTypeGeneral,
	}
}

// IsValid returns true if the clause type is recognised.
func (t ClauseType) IsValid() bool {
	for _, known := range AllClauseTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (t ClauseType) String() string {
	return string(t)
}

// Description returns a human-readable noun phrase for the clause type.
func (t ClauseType) Description() string {
	switch t {
	case ClauseTypePayment:
		return "payment terms"
	case ClauseTypeLiability:
		return "liability provision"
	case ClauseTypeTermination:
		return "termination provision"
	case ClauseTypeConfidentiality:
		return "confidentiality obligation"
	case ClauseTypeIntellectualProperty:
		return "intellectual property provision"
	case ClauseTypeDisputeResolution:
		return "dispute resolution provision"
	case ClauseTypeGoverningLaw:
		return "governing law provision"
	case ClauseTypeWarranty:
		return "warranty provision"
	case ClauseTypeDefinition:
		return "definition"
	case ClauseTypeGeneral:
		return "general provision"
	default:
		return unknownDescription
	}
}

const unknownDescription = "Unknown"

// Clause is a contiguous, classified span of a document's extracted text.
// Offsets are byte offsets into Document.ExtractedText with
// 0 <= StartOffset < EndOffset <= len(text).
type Clause struct {
	ID          string     `json:"id"`
	DocumentID  string     `json:"document_id,omitempty"`
	StartOffset int        `json:"start_index"`
	EndOffset   int        `json:"end_index"`
	Type        ClauseType `json:"type"`
	Confidence  float64    `json:"confidence"`
	Text        string     `json:"text"`
}

// Len returns the span length in bytes.
func (c Clause) Len() int {
	return c.EndOffset - c.StartOffset
}
