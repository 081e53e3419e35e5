package csvtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		line string
		want rune
	}{
		{"commas only", "user_id,month,text,active_next_month", ','},
		{"semicolons outnumber commas", "user_id;month, really;text", ';'},
		{"tabs outnumber both", "user_id\tmonth\ttext", '\t'},
		{"tie comma semicolon favors comma", "a,b;c", ','},
		{"semicolon needs to match tabs", "a;b\tc\td", '\t'},
		{"empty line defaults to comma", "", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectDelimiter(tt.line))
		})
	}
}

func TestParse_HeaderKeying(t *testing.T) {
	table := Parse("user_id,month,text\nu1,2025-09,hello\nu2,2025-10,world\n")

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"user_id", "month", "text"}, table.Header)
	assert.Equal(t, "u1", table.Rows[0]["user_id"])
	assert.Equal(t, "world", table.Rows[1]["text"])
}

func TestParse_StripsByteOrderMark(t *testing.T) {
	table := Parse("\uFEFFuser_id,month\nu1,2025-09\n")

	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"user_id", "month"}, table.Header)
}

func TestParse_QuotedFieldRoundTrip(t *testing.T) {
	table := Parse("user_id,text\nu1,\"a,\"\"b\"\",c\"\n")

	require.Len(t, table.Rows, 1)
	assert.Equal(t, `a,"b",c`, table.Rows[0]["text"])
}

func TestParse_NewlineInsideQuotes(t *testing.T) {
	table := Parse("user_id,text\nu1,\"line one\nline two\"\n")

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "line one\nline two", table.Rows[0]["text"])
}

func TestParse_CRLFLineEndings(t *testing.T) {
	table := Parse("user_id,month\r\nu1,2025-09\r\nu2,2025-10\r\n")

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2025-10", table.Rows[1]["month"])
}

func TestParse_TrailingBlankLineDropped(t *testing.T) {
	with := Parse("user_id,month\nu1,2025-09\n\n")
	without := Parse("user_id,month\nu1,2025-09")

	assert.Len(t, with.Rows, 1)
	assert.Len(t, without.Rows, 1)
}

func TestParse_SemicolonDelimited(t *testing.T) {
	table := Parse("user_id;month;text\nu1;2025-09;prima, hoor\n")

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "prima, hoor", table.Rows[0]["text"])
}

func TestParse_ShortRowLeavesColumnsAbsent(t *testing.T) {
	table := Parse("user_id,month,text\nu1,2025-09\n")

	require.Len(t, table.Rows, 1)
	_, ok := table.Rows[0]["text"]
	assert.False(t, ok)
}

func TestParse_LongRowDropsExcessFields(t *testing.T) {
	table := Parse("user_id,month\nu1,2025-09,extra,fields\n")

	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Rows[0], 2)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse("").Rows)
	assert.Empty(t, Parse("   \n  \n").Rows)
}

func TestParse_BlankHeaderYieldsNothing(t *testing.T) {
	table := Parse(",,\nu1,2025-09,hello\n")

	assert.Empty(t, table.Header)
	assert.Empty(t, table.Rows)
}

func TestParse_HeaderCellsTrimmed(t *testing.T) {
	table := Parse(" user_id , month \nu1,2025-09\n")

	assert.Equal(t, []string{"user_id", "month"}, table.Header)
	assert.Equal(t, "u1", table.Rows[0]["user_id"])
}
