package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityExtractor_Parties(t *testing.T) {
	e := NewEntityExtractor()

	text := "This Supply Agreement is made between Acme Widgets Inc. and Beta Supplies LLC, " +
		"with Gamma Holdings Ltd as guarantor. Acme Widgets Inc. shall deliver the goods. The Company may audit."

	got := e.Extract(text)
	assert.Equal(t, []string{"Acme Widgets Inc.", "Beta Supplies LLC", "Gamma Holdings Ltd"}, got.Parties)
}

func TestEntityExtractor_Dates(t *testing.T) {
	e := NewEntityExtractor()

	text := "Effective January 15, 2024 until 2025-01-14. Notice dated 3/4/2024 requires 30 days. " +
		"Signed on the 1st day of March, 2024."

	got := e.Extract(text)
	assert.Equal(t, []string{"January 15, 2024", "2025-01-14", "3/4/2024", "30 days", "1st day of March, 2024"}, got.Dates)
}

func TestEntityExtractor_Amounts(t *testing.T) {
	e := NewEntityExtractor()

	text := "The fee is $5,000 monthly, capped at USD 120,000.50, plus a deposit of ₹ 25,000 and 300 euros. " +
		"A second $5,000 is due later."

	got := e.Extract(text)
	assert.Equal(t, []string{"$5,000", "USD 120,000.50", "₹ 25,000", "300 euros"}, got.Amounts)
}

func TestEntityExtractor_NoEntities(t *testing.T) {
	got := NewEntityExtractor().Extract("nothing of note here")
	assert.Empty(t, got.Parties)
	assert.Empty(t, got.Dates)
	assert.Empty(t, got.Amounts)
	assert.NotNil(t, got.Parties)
}
