package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitVariantTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		err      error
	}{
		{name: "single segment", input: "Red", expected: []string{"Red"}},
		{name: "two segments", input: "Red/Large", expected: []string{"Red", "Large"}},
		{name: "three segments", input: "Red/Large/Cotton", expected: []string{"Red", "Large", "Cotton"}},
		{name: "empty title", input: "", err: ErrEmptyVariantTitle},
		{name: "four segments", input: "a/b/c/d", err: ErrTooManyVariantSlots},
		{name: "empty middle segment", input: "Red//Cotton", err: ErrEmptyVariantSegment},
		{name: "trailing separator", input: "Red/", err: ErrEmptyVariantSegment},
		{name: "whitespace is kept", input: " Red/Large", expected: []string{" Red", "Large"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := SplitVariantTitle(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, segments)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, segments)
		})
	}
}

func TestJoinVariantTitle_SkipsEmptySlots(t *testing.T) {
	assert.Equal(t, "Red/Large", JoinVariantTitle("Red", "Large", ""))
	assert.Equal(t, "Red", JoinVariantTitle("Red", "", ""))
	assert.Equal(t, "", JoinVariantTitle("", "", ""))
}

func TestVariantTitle_RoundTripThroughSlots(t *testing.T) {
	red, large := uuid.New(), uuid.New()
	titles := map[uuid.UUID]string{red: "Red", large: "Large"}

	segments, err := SplitVariantTitle("Red/Large")
	require.NoError(t, err)

	byTitle := map[string]uuid.UUID{"Red": red, "Large": large}
	ids := make([]uuid.UUID, 0, len(segments))
	for _, s := range segments {
		ids = append(ids, byTitle[s])
	}

	row := &ProductVariantPrice{}
	row.SetSlots(ids)

	require.NotNil(t, row.ProductVariantOne)
	require.NotNil(t, row.ProductVariantTwo)
	assert.Nil(t, row.ProductVariantThree)
	assert.Equal(t, red, *row.ProductVariantOne)
	assert.Equal(t, large, *row.ProductVariantTwo)

	slotTitles := make([]string, 0, MaxVariantSlots)
	for _, slot := range row.Slots() {
		if slot == nil {
			slotTitles = append(slotTitles, "")
			continue
		}
		slotTitles = append(slotTitles, titles[*slot])
	}
	assert.Equal(t, "Red/Large", JoinVariantTitle(slotTitles...))
}

func TestProductVariantPrice_SlotKeyIsPositional(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ab := &ProductVariantPrice{}
	ab.SetSlots([]uuid.UUID{a, b})
	ba := &ProductVariantPrice{}
	ba.SetSlots([]uuid.UUID{b, a})

	assert.NotEqual(t, ab.SlotKey(), ba.SlotKey(), "slot order is significant")
	assert.Equal(t, SlotKey{a, b, uuid.Nil}, ab.SlotKey())
}

func TestVariantPriceInput_Defaults(t *testing.T) {
	in := &VariantPriceInput{Title: "Red"}
	assert.True(t, in.PriceOrZero().IsZero())
	assert.Equal(t, 0, in.StockOrZero())
}
