package table

import (
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rentalfigs/internal/errors"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantHeader []string
		wantRows   int
		wantErr    apperrors.ErrorType
	}{
		{
			name:       "plain header",
			content:    "city,neighbourhood,roi_ratio\nVancouver,Kitsilano,0.05\n",
			wantHeader: []string{"city", "neighbourhood", "roi_ratio"},
			wantRows:   1,
		},
		{
			name:       "bom and padded header",
			content:    "\ufeff City , Period ,mean_price\nVancouver,Pre,180\n",
			wantHeader: []string{"City", "Period", "mean_price"},
			wantRows:   1,
		},
		{
			name:       "blank lines skipped",
			content:    "a,b\n1,2\n,\n3,4\n",
			wantHeader: []string{"a", "b"},
			wantRows:   2,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: apperrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Load(writeCSV(t, "input.csv", tt.content))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "input.csv", tbl.Name)
			assert.Equal(t, tt.wantHeader, tbl.Header)
			assert.Equal(t, tt.wantRows, tbl.Len())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "rq3_price_summary.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRead_RaggedRows(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,b,c\n1\n1,2,3,4\n"), "ragged.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, tbl.Rows[1])
}

func TestRequireColumns(t *testing.T) {
	tbl := New("roi_merged_full.csv", []string{"city", "price"}, nil)

	assert.NoError(t, tbl.RequireColumns("city"))

	err := tbl.RequireColumns("neighbourhood", "city", "roi_ratio")
	require.Error(t, err)
	var mc *apperrors.MissingColumnsError
	require.True(t, stderrors.As(err, &mc))
	assert.Equal(t, []string{"neighbourhood", "roi_ratio"}, mc.Missing)
	assert.Equal(t, "roi_merged_full.csv", mc.Table)
}

func TestFloats(t *testing.T) {
	tbl, err := Read(strings.NewReader("v\n1.5\n\nNaN\nabc\n -2 \nNA\n1e3\n"), "nums.csv")
	require.NoError(t, err)

	got, err := tbl.Floats("v")
	require.NoError(t, err)
	// the blank line is skipped entirely
	require.Len(t, got, 6)
	assert.Equal(t, 1.5, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.True(t, math.IsNaN(got[2]))
	assert.Equal(t, -2.0, got[3])
	assert.True(t, math.IsNaN(got[4]))
	assert.Equal(t, 1000.0, got[5])

	_, err = tbl.Floats("missing")
	assert.Error(t, err)
}

func TestIsNull(t *testing.T) {
	for _, c := range []string{"", " ", "NA", "NaN", "null", "None", "<NA>"} {
		assert.True(t, IsNull(c), "%q should be null", c)
	}
	for _, c := range []string{"0", "Vancouver", "none"} {
		assert.False(t, IsNull(c), "%q should not be null", c)
	}
}
