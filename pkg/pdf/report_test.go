package pdf_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplementsafetybible/backend/pkg/pdf"
)

func TestGenerate(t *testing.T) {
	gen := pdf.NewGenerator()

	t.Run("produces a valid pdf document", func(t *testing.T) {
		out, err := gen.Generate(pdf.Report{
			Medications: []string{"Warfarin", "Lisinopril"},
			Supplements: []string{"Fish Oil", "St. John's Wort"},
			GeneratedAt: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.NotEmpty(t, out)
		assert.Equal(t, "%PDF", string(out[:4]))
	})

	t.Run("empty lists still render", func(t *testing.T) {
		out, err := gen.Generate(pdf.Report{})
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	})
}
