package extract

import (
	"strings"
	"testing"

	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitClauses_Basic(t *testing.T) {
	text := "Employee shall not disclose confidential information.\n\n" +
		"Employee shall indemnify Employer for any penalty arising from breach. This clause also includes arbitration for disputes."

	clauses := SplitClauses(text)
	require.Len(t, clauses, 2)
	assert.Equal(t, 1, clauses[0].Number)
	assert.Equal(t, "Employee shall not disclose confidential information.", clauses[0].Text)
	assert.Equal(t, 2, clauses[1].Number)
	assert.True(t, strings.HasPrefix(clauses[1].Text, "Employee shall indemnify"))
}

func TestSplitClauses_DropsShortFragments(t *testing.T) {
	exactly40 := strings.Repeat("x", 40)
	exactly41 := strings.Repeat("y", 41)

	text := "ARTICLE 1\n\n" + exactly40 + "\n\n" + exactly41 + "\n\n   \n\nSigned."
	clauses := SplitClauses(text)

	require.Len(t, clauses, 1)
	assert.Equal(t, exactly41, clauses[0].Text)
	assert.Equal(t, 1, clauses[0].Number)
}

func TestSplitClauses_LengthCountsCharacters(t *testing.T) {
	quoted := "The “Client” shall pay the “Fees”."
	devanagari := "कर्मचारी गोपनीय जानकारी"
	kept := "Employee shall not disclose confidential information."

	require.Less(t, len([]rune(quoted)), MinClauseLength)
	require.Greater(t, len(quoted), MinClauseLength)
	require.Greater(t, len(devanagari), MinClauseLength)

	clauses := SplitClauses(quoted + "\n\n" + devanagari + "\n\n" + kept)
	require.Len(t, clauses, 1)
	assert.Equal(t, 1, clauses[0].Number)
	assert.Equal(t, kept, clauses[0].Text)

	long := strings.Repeat("€", 41)
	clauses = SplitClauses(strings.Repeat("€", 40) + "\n\n" + long)
	require.Len(t, clauses, 1)
	assert.Equal(t, long, clauses[0].Text)
}

func TestSplitClauses_UnicodeWhitespaceSeparators(t *testing.T) {
	a := "The Supplier shall deliver the goods within thirty days."
	b := "The Customer shall pay each invoice within sixty days of receipt."

	for _, sep := range []string{"\n\u00a0\n", "\n\v\n", "\n\u2003 \u3000\n", "\n\u0085\n", "\n\u2028\n"} {
		clauses := SplitClauses(a + sep + b)
		require.Len(t, clauses, 2, "separator %q", sep)
		assert.Equal(t, a, clauses[0].Text)
		assert.Equal(t, b, clauses[1].Text)
	}
}

func TestSplitClauses_WhitespaceOnlySeparators(t *testing.T) {
	a := "The Supplier shall deliver the goods within thirty days."
	b := "The Customer shall pay each invoice within sixty days of receipt."

	for _, sep := range []string{"\n\n", "\n \n", "\n\t\n", "\r\n\r\n", "\n\n\n\n", "\n  \t  \n\n"} {
		clauses := SplitClauses("  " + a + sep + b + "  ")
		require.Len(t, clauses, 2, "separator %q", sep)
		assert.Equal(t, a, clauses[0].Text)
		assert.Equal(t, b, clauses[1].Text)
	}
}

func TestSplitClauses_SingleNewlineDoesNotSplit(t *testing.T) {
	text := "The Supplier shall deliver the goods\nwithin thirty days of the purchase order."
	clauses := SplitClauses(text)
	require.Len(t, clauses, 1)
	assert.Equal(t, text, clauses[0].Text)
}

func TestSplitClauses_Empty(t *testing.T) {
	assert.Empty(t, SplitClauses(""))
	assert.Empty(t, SplitClauses("\n\n\n"))
	assert.NotNil(t, SplitClauses(""))
}

func TestSplitClauses_Idempotent(t *testing.T) {
	text := "PREAMBLE\n\n" +
		"This Agreement is entered into by Acme Widgets Inc. and Beta Supplies LLC.\n \n" +
		"short\n\n\n" +
		"The Vendor shall supply the goods listed in Schedule A on a monthly basis.\n" +
		"Deliveries are made to the Customer's warehouse.\n\n" +
		"   Either party may terminate with 30 days written notice to the other.   "

	first := SplitClauses(text)
	second := SplitClauses(JoinClauses(first))

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
}

func TestJoinClauses(t *testing.T) {
	clauses := []model.Clause{{Number: 1, Text: "a"}, {Number: 2, Text: "b"}}
	assert.Equal(t, "a\n\nb", JoinClauses(clauses))
	assert.Equal(t, "", JoinClauses(nil))
}
