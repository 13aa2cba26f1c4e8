package transcode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/diarydek/diarydek/internal/domain"
	"github.com/diarydek/diarydek/internal/store"
)

func snapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	a, err := domain.ParseStamp("2024-01-01")
	require.NoError(t, err)
	b, err := domain.ParseStamp("2024-01-02 09:15:00.123")
	require.NoError(t, err)

	return &domain.Snapshot{
		Tags: []domain.Tag{{ID: "t1", Text: "outdoors"}, {ID: "t2", Text: "fitness"}},
		Entries: []domain.Entry{
			{ID: "e1", Seq: 1, Stamp: a, Body: "Went hiking"},
			{ID: "e2", Seq: 2, Stamp: b, Body: "Said \"hi\", then left\nearly"},
		},
		Associations: []domain.Association{
			{EntryID: "e1", TagID: "t1"},
			{EntryID: "e1", TagID: "t2"},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(snapshot(t))
	assert.Equal(t, []Row{
		{Stamp: "2024-01-01", Body: "Went hiking", Tags: "outdoors,fitness"},
		{Stamp: "2024-01-02 09:15:00.123", Body: "Said \"hi\", then left\nearly", Tags: ""},
	}, rows)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Rows(snapshot(t))))

	want := "2024-01-01,Went hiking,\"outdoors,fitness\"\n" +
		"2024-01-02 09:15:00.123,\"Said \"\"hi\"\", then left\nearly\",\n"
	assert.Equal(t, want, buf.String())
}

func TestCSVRoundTrip(t *testing.T) {
	rows := Rows(snapshot(t))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestCSVRoundTripLineEndings(t *testing.T) {
	rows := []Row{
		{Stamp: "2024-01-01", Body: store.NormalizeBody("line one\r\nline two"), Tags: ""},
		{Stamp: "2024-01-02", Body: "carriage\rreturn\nand newline", Tags: "x"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReadCSVMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"too few fields", "2024-01-01,ok,\n2024-01-02,missing tags\n", 2},
		{"too many fields", "2024-01-01,a,b,c\n", 1},
		{"bad timestamp", "2024-01-01,ok,\nlast week,body,\n", 2},
		{"bad quoting", "2024-01-01,\"unterminated,\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.ErrorIs(t, err, domain.ErrMalformedRow)

			var rerr *RowError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.line, rerr.Line)
		})
	}
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, SplitTags(""))
	assert.Equal(t, []string{"a"}, SplitTags("a"))
	assert.Equal(t, []string{"a", "b"}, SplitTags("a,,b"))
}

func TestRowEntry(t *testing.T) {
	stamp, body, tags, err := Row{Stamp: "2024-01-01 10:00:00", Body: "b", Tags: "x,y"}.Entry()
	require.NoError(t, err)
	assert.Equal(t, domain.DateTime, stamp.Kind)
	assert.Equal(t, "2024-01-01 10:00:00", stamp.Raw)
	assert.Equal(t, "b", body)
	assert.Equal(t, []string{"x", "y"}, tags)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Rows(snapshot(t))))

	xl, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"timestamp", "body", "tags"}, rows[0])
	assert.Equal(t, []string{"2024-01-01", "Went hiking", "outdoors,fitness"}, rows[1])
	assert.Equal(t, "Said \"hi\", then left\nearly", rows[2][1])
}
