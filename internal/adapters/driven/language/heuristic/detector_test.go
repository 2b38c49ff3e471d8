package heuristic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Detect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
		wantConf float64
	}{
		{
			name:     "english contract",
			text:     "The Tenant shall pay the rent to the Landlord on the first day of each month and in full.",
			wantCode: "en",
			wantConf: 0.7,
		},
		{
			name:     "spanish",
			text:     "El arrendatario pagará la renta del mes en los primeros días y no se admite retraso por causa alguna.",
			wantCode: "es",
			wantConf: 0.7,
		},
		{
			name:     "french",
			text:     "Le locataire paie le loyer avec les charges et il ne peut pas le retenir.",
			wantCode: "fr",
			wantConf: 0.7,
		},
		{
			name:     "german",
			text:     "Der Mieter zahlt die Miete und die Nebenkosten auf das Konto des Vermieters.",
			wantCode: "de",
			wantConf: 0.6,
		},
	}

	d := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := d.Detect(context.Background(), tt.text)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.InDelta(t, tt.wantConf, res.Confidence, 1e-9)
			assert.Equal(t, "heuristic", res.Provider)
		})
	}
}

func TestDetector_Undecided(t *testing.T) {
	d := New()

	_, err := d.Detect(context.Background(), "12345 67890 !!!")
	assert.ErrorIs(t, err, ErrUndecided)

	// "la" and "de" count for Spanish and French alike.
	_, err = d.Detect(context.Background(), "la de")
	assert.ErrorIs(t, err, ErrUndecided)
}

func TestDetector_MatchesWholeWordsOnly(t *testing.T) {
	// "theory" and "another" contain "the" but are not the article.
	res, err := New().Detect(context.Background(), "Theory another und")

	require.NoError(t, err)
	assert.Equal(t, "de", res.Code)
}
