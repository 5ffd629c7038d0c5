package datanorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_RowCountAndHeaders(t *testing.T) {
	text := " ad_name , spend ,url\r\nAd One,$10,https://a.example/1.jpg\r\n\r\n   \nAd Two,5,\n"

	table, err := ReadCSV(text, ReaderOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"ad_name", "spend", "url"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Ad One", table.Rows[0].Get("ad_name"))
	assert.Equal(t, "https://a.example/1.jpg", table.Rows[0].Get("url"))
	assert.Equal(t, "", table.Rows[1].Get("url"))
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, 5, table.Rows[1].Line)
}

func TestReadCSV_QuotedComma(t *testing.T) {
	table, err := ReadCSV("name,b,c\n\"a,b\",x,y\n", ReaderOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	assert.Equal(t, "a,b", table.Rows[0].Get("name"))
	assert.Equal(t, "x", table.Rows[0].Get("b"))
	assert.Equal(t, "y", table.Rows[0].Get("c"))
}

func TestReadCSV_EscapedQuotes(t *testing.T) {
	table, err := ReadCSV("name,b\n\"say \"\"hi\"\"\",1\n", ReaderOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, `say "hi"`, table.Rows[0].Get("name"))
}

func TestReadCSV_ShortRowsArePadded(t *testing.T) {
	table, err := ReadCSV("a,b,c\n1\n1,2,3,4\n", ReaderOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "1", table.Rows[0].Get("a"))
	assert.Equal(t, "", table.Rows[0].Get("c"))
	assert.Len(t, table.Rows[1].Fields, 3, "extra fields beyond the header are dropped")
}

func TestReadCSV_ScanForMarker(t *testing.T) {
	text := "Top Ads Report,,\nGenerated,2024-05-01,\nConcepts,ad_name,URL\nHero,Ad One,https://x/1.png\n"

	table, err := ReadCSV(text, ReaderOptions{HeaderMode: HeaderScanForMarker, Marker: "AD_NAME"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Concepts", "ad_name", "URL"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Hero", table.Rows[0].Get("Concepts"))
}

func TestReadCSV_MarkerMissing(t *testing.T) {
	_, err := ReadCSV("a,b\n1,2\n", ReaderOptions{HeaderMode: HeaderScanForMarker, Marker: "ad_name"})
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestReadCSV_KeyColumnExcludesEmptyRows(t *testing.T) {
	text := "Category,Ad Name,url\nWindows,Ad One,u1\nWindows,,u2\nWindows,  ,u3\n"

	table, err := ReadCSV(text, ReaderOptions{KeyColumn: "Ad Name"})
	require.NoError(t, err)

	assert.Len(t, table.Rows, 1)
	assert.Equal(t, 2, table.Excluded)
}

func TestReadCSV_MalformedLineSkipped(t *testing.T) {
	text := "name,spend\nAd One,1\nAd \"Broken,2\nAd Three,3\n"

	table, err := ReadCSV(text, ReaderOptions{})
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Skipped)
	assert.Equal(t, "Ad Three", table.Rows[1].Get("name"))
}

func TestReadCSV_StripsBOM(t *testing.T) {
	table, err := ReadCSV("\uFEFFad_name,spend\nx,1\n", ReaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ad_name", table.Headers[0])
}

func TestReadCSV_Empty(t *testing.T) {
	table, err := ReadCSV("\n\n", ReaderOptions{})
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestSplitQuoted(t *testing.T) {
	assert.Equal(t, []string{"a,b", "c", ""}, splitQuoted(`"a,b",c,`))
}
