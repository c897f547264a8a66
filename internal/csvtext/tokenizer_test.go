package csvtext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcaload/internal/csvtext"
)

func TestSplitRecord(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `"Acme, Inc",CA`, []string{"Acme, Inc", "CA"}},
		{"escaped quote", `"He said ""hi""",x`, []string{`He said "hi"`, "x"}},
		{"trimmed cells", "  a , b  ,c ", []string{"a", "b", "c"}},
		{"empty trailing cells kept", "a,,", []string{"a", "", ""}},
		{"empty line", "", []string{""}},
		{"quote mid-cell toggles", `ab"c,d"e,f`, []string{"abc,de", "f"}},
		{"quoted currency", `"$92,000",1`, []string{"$92,000", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := csvtext.SplitRecord(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitRecord_UnterminatedQuote(t *testing.T) {
	_, err := csvtext.SplitRecord(`A1,"Acme, Inc`)
	assert.ErrorIs(t, err, csvtext.ErrUnterminatedQuote)
}

func TestCell(t *testing.T) {
	row := []string{"a", "b"}
	assert.Equal(t, "b", csvtext.Cell(row, 1))
	assert.Equal(t, "", csvtext.Cell(row, 2))
	assert.Equal(t, "", csvtext.Cell(row, -1))
}
