package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsers(t *testing.T) {
	p, err := ParsePaper("letter")
	require.NoError(t, err)
	assert.Equal(t, PaperLetter, p)
	_, err = ParsePaper("a3")
	assert.Error(t, err)

	b, err := ParseBleed("medium")
	require.NoError(t, err)
	assert.Equal(t, 4.0, b.MM())
	_, err = ParseBleed("huge")
	assert.Error(t, err)

	c, err := ParseCutStyle("marks")
	require.NoError(t, err)
	assert.Equal(t, CutMarks, c)
	_, err = ParseCutStyle("dotted")
	assert.Error(t, err)
}

func TestBleedWidths(t *testing.T) {
	assert.Equal(t, 0.0, BleedNone.MM())
	assert.Equal(t, 2.0, BleedNarrow.MM())
	assert.Equal(t, 4.0, BleedMedium.MM())
	assert.Equal(t, 6.0, BleedWide.MM())
}

func TestPaginate(t *testing.T) {
	g := Default()
	require.Equal(t, 9, g.Capacity())

	plan, err := Paginate(g, 20)
	require.NoError(t, err)
	require.Len(t, plan.Pages, 3)
	assert.Equal(t, Page{Start: 0, Count: 9}, plan.Pages[0])
	assert.Equal(t, Page{Start: 9, Count: 9}, plan.Pages[1])
	assert.Equal(t, Page{Start: 18, Count: 2}, plan.Pages[2])

	plan, err = Paginate(g, 9)
	require.NoError(t, err)
	require.Len(t, plan.Pages, 1)
	assert.Equal(t, 9, plan.Pages[0].Count)
}

func TestPaginateErrors(t *testing.T) {
	g := Default()

	_, err := Paginate(g, 0)
	var layoutErr *LayoutError
	require.ErrorAs(t, err, &layoutErr)

	bad := g
	bad.Rows = 0
	_, err = Paginate(bad, 5)
	require.ErrorAs(t, err, &layoutErr)

	tooBig := g
	tooBig.Columns = 5
	_, err = Paginate(tooBig, 5)
	require.ErrorAs(t, err, &layoutErr, "five columns of cards cannot fit on a4")
}

func TestLetterFitsDefaultGrid(t *testing.T) {
	g := Default()
	g.Paper = PaperLetter
	assert.NoError(t, g.Validate())

	g.Bleed = BleedWide
	assert.Error(t, g.Validate(), "3 columns with wide bleed overflow letter width")
}

func TestCardRectGridIsCentered(t *testing.T) {
	g := Default()
	pw, ph := g.Paper.Size()

	topLeft := g.CardRect(0, 0)
	bottomRight := g.CardRect(g.Rows-1, g.Columns-1)

	assert.InDelta(t, topLeft.X, pw-(bottomRight.X+bottomRight.W), 1e-9,
		"equal margins left and right")
	assert.InDelta(t, bottomRight.Y, ph-(topLeft.Y+topLeft.H), 1e-9,
		"equal margins top and bottom")
	assert.Greater(t, topLeft.Y, bottomRight.Y, "row 0 is the top row")
}

func TestDrawRectExpandsByBleed(t *testing.T) {
	g := Default()
	g.Bleed = BleedNarrow

	trim := g.CardRect(1, 1)
	draw := g.DrawRect(1, 1)

	assert.InDelta(t, trim.X-2, draw.X, 1e-9)
	assert.InDelta(t, trim.Y-2, draw.Y, 1e-9)
	assert.InDelta(t, trim.W+4, draw.W, 1e-9)
	assert.InDelta(t, trim.H+4, draw.H, 1e-9)

	// Neighboring drawable rects may touch but never overlap.
	left := g.DrawRect(0, 0)
	right := g.DrawRect(0, 1)
	assert.LessOrEqual(t, left.X+left.W, right.X+1e-9)
}

func TestSlotRects(t *testing.T) {
	g := Default()
	assert.Equal(t, g.DrawRect(0, 2), g.SlotRect(2))
	assert.Equal(t, g.DrawRect(1, 0), g.SlotRect(3))
	assert.Equal(t, g.CardRect(2, 2), g.SlotTrimRect(8))
}

func TestMarks(t *testing.T) {
	g := Default()

	g.Cut = CutLines
	lines := g.Marks()
	assert.Len(t, lines, 2*g.Columns+2*g.Rows)
	pw, ph := g.Paper.Size()
	for _, guide := range lines {
		vertical := guide.X1 == guide.X2
		if vertical {
			assert.Equal(t, 0.0, guide.Y1)
			assert.Equal(t, ph, guide.Y2)
		} else {
			assert.Equal(t, 0.0, guide.X1)
			assert.Equal(t, pw, guide.X2)
		}
	}

	g.Cut = CutMarks
	ticks := g.Marks()
	assert.Len(t, ticks, 4*g.Columns+4*g.Rows)
	for _, tick := range ticks {
		for slot := 0; slot < g.Capacity(); slot++ {
			r := g.SlotRect(slot)
			inside := tick.X1 > r.X && tick.X1 < r.X+r.W &&
				tick.Y1 > r.Y && tick.Y1 < r.Y+r.H
			assert.False(t, inside, "ticks stay clear of the card area")
		}
	}

	g.Cut = CutNone
	assert.Empty(t, g.Marks())
}

func TestMarksDeterministic(t *testing.T) {
	g := Default()
	assert.Equal(t, g.Marks(), g.Marks())
}
