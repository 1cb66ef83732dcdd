// Package layout computes proxy sheet geometry. All values are in
// millimeters with the origin at the bottom-left of the page, matching the
// PDF coordinate convention; conversion to points happens at draw time.
package layout

import "fmt"

// A playing card is 2.5 by 3.5 inches. Printed proxies come out a hair
// small so they slide into sleeves in front of a real card.
const (
	cardWidthMM  = 2.5 * 25.4 * 0.98
	cardHeightMM = 3.5 * 25.4 * 0.98
)

type LayoutError struct {
	Reason string
}

func (e *LayoutError) Error() string {
	return "layout: " + e.Reason
}

// Paper identifies a supported page size.
type Paper string

const (
	PaperA4     Paper = "a4"
	PaperLetter Paper = "letter"
)

func ParsePaper(s string) (Paper, error) {
	switch Paper(s) {
	case PaperA4:
		return PaperA4, nil
	case PaperLetter:
		return PaperLetter, nil
	}
	return "", fmt.Errorf("unknown paper size %q (expected a4 or letter)", s)
}

// Size returns the page dimensions in millimeters.
func (p Paper) Size() (w, h float64) {
	switch p {
	case PaperLetter:
		return 215.9, 279.4
	default:
		return 210, 297
	}
}

// Bleed selects how far the printed image extends past the trim line.
type Bleed string

const (
	BleedNone   Bleed = "none"
	BleedNarrow Bleed = "narrow"
	BleedMedium Bleed = "medium"
	BleedWide   Bleed = "wide"
)

func ParseBleed(s string) (Bleed, error) {
	switch Bleed(s) {
	case BleedNone, BleedNarrow, BleedMedium, BleedWide:
		return Bleed(s), nil
	}
	return "", fmt.Errorf("unknown bleed %q (expected none, narrow, medium, or wide)", s)
}

// MM returns the bleed margin in millimeters.
func (b Bleed) MM() float64 {
	switch b {
	case BleedNarrow:
		return 2
	case BleedMedium:
		return 4
	case BleedWide:
		return 6
	default:
		return 0
	}
}

// CutStyle selects the trim guides drawn over the sheet.
type CutStyle string

const (
	// CutLines draws full trim lines across the sheet.
	CutLines CutStyle = "lines"
	// CutMarks draws short ticks at the trim corners, outside the cards.
	CutMarks CutStyle = "marks"
	CutNone  CutStyle = "none"
)

func ParseCutStyle(s string) (CutStyle, error) {
	switch CutStyle(s) {
	case CutLines, CutMarks, CutNone:
		return CutStyle(s), nil
	}
	return "", fmt.Errorf("unknown cut style %q (expected lines, marks, or none)", s)
}

// Rect is an axis-aligned rectangle in millimeters, origin bottom-left.
type Rect struct {
	X, Y, W, H float64
}

// Geometry is a fully resolved sheet profile.
type Geometry struct {
	Paper      Paper
	Rows       int
	Columns    int
	CardWidth  float64
	CardHeight float64
	Bleed      Bleed
	Cut        CutStyle
}

// Default returns the standard nine-card sheet.
func Default() Geometry {
	return Geometry{
		Paper:      PaperA4,
		Rows:       3,
		Columns:    3,
		CardWidth:  cardWidthMM,
		CardHeight: cardHeightMM,
		Bleed:      BleedNone,
		Cut:        CutLines,
	}
}

// Capacity is the number of card slots per page.
func (g Geometry) Capacity() int {
	return g.Rows * g.Columns
}

// cell is the pitch between slot origins. Slots are spaced so adjacent
// bleed areas touch without overlapping.
func (g Geometry) cell() (w, h float64) {
	b := g.Bleed.MM()
	return g.CardWidth + 2*b, g.CardHeight + 2*b
}

// Validate checks that the grid fits on the page.
func (g Geometry) Validate() error {
	if g.Rows < 1 || g.Columns < 1 {
		return &LayoutError{Reason: fmt.Sprintf("grid %dx%d has no slots", g.Rows, g.Columns)}
	}
	if g.CardWidth <= 0 || g.CardHeight <= 0 {
		return &LayoutError{Reason: "card dimensions must be positive"}
	}
	pw, ph := g.Paper.Size()
	cw, ch := g.cell()
	if float64(g.Columns)*cw > pw || float64(g.Rows)*ch > ph {
		return &LayoutError{Reason: fmt.Sprintf("grid %dx%d does not fit on %s paper",
			g.Rows, g.Columns, g.Paper)}
	}
	return nil
}

// origin returns the bottom-left corner of the grid, centered on the page.
func (g Geometry) origin() (x, y float64) {
	pw, ph := g.Paper.Size()
	cw, ch := g.cell()
	return (pw - float64(g.Columns)*cw) / 2, (ph - float64(g.Rows)*ch) / 2
}

// CardRect returns the trim rectangle for a slot. Row 0 is the top row so
// slots read left to right, top to bottom, like the selection order.
func (g Geometry) CardRect(row, col int) Rect {
	ox, oy := g.origin()
	cw, ch := g.cell()
	b := g.Bleed.MM()
	return Rect{
		X: ox + float64(col)*cw + b,
		Y: oy + float64(g.Rows-1-row)*ch + b,
		W: g.CardWidth,
		H: g.CardHeight,
	}
}

// DrawRect returns the image rectangle for a slot: the trim rectangle
// expanded outward by the bleed margin on every side.
func (g Geometry) DrawRect(row, col int) Rect {
	r := g.CardRect(row, col)
	b := g.Bleed.MM()
	return Rect{X: r.X - b, Y: r.Y - b, W: r.W + 2*b, H: r.H + 2*b}
}

// SlotRect returns the drawable rectangle for a flat slot index.
func (g Geometry) SlotRect(slot int) Rect {
	return g.DrawRect(slot/g.Columns, slot%g.Columns)
}

// SlotTrimRect returns the trim rectangle for a flat slot index.
func (g Geometry) SlotTrimRect(slot int) Rect {
	return g.CardRect(slot/g.Columns, slot%g.Columns)
}

// markLength is how far cut ticks extend from a trim corner, and the
// gutter kept between a tick and the card art.
const (
	markLengthMM = 4.0
	markGapMM    = 1.0
	guideWidthMM = 0.2
)

// Guide is a straight trim guide to stroke on the page.
type Guide struct {
	X1, Y1, X2, Y2 float64
}

// Marks returns the trim guides for one full page in the configured cut
// style. Lines span the whole page so every card edge is covered; marks are
// per-corner ticks kept clear of the printed area.
func (g Geometry) Marks() []Guide {
	switch g.Cut {
	case CutLines:
		return g.trimLines()
	case CutMarks:
		return g.cornerTicks()
	default:
		return nil
	}
}

func (g Geometry) trimLines() []Guide {
	pw, ph := g.Paper.Size()
	var guides []Guide

	// Column edges left to right, then row edges bottom to top, so the
	// guide order (and with it the PDF content stream) is stable.
	var xs, ys []float64
	for col := 0; col < g.Columns; col++ {
		r := g.CardRect(0, col)
		xs = append(xs, r.X, r.X+r.W)
	}
	for row := g.Rows - 1; row >= 0; row-- {
		r := g.CardRect(row, 0)
		ys = append(ys, r.Y, r.Y+r.H)
	}
	for _, x := range xs {
		guides = append(guides, Guide{X1: x, Y1: 0, X2: x, Y2: ph})
	}
	for _, y := range ys {
		guides = append(guides, Guide{X1: 0, Y1: y, X2: pw, Y2: y})
	}
	return guides
}

// cornerTicks draws short guides in the page margins, one pair per trim
// line. They sit wholly outside the card grid, clear of every drawable
// rectangle regardless of bleed width, and intersect mentally at the trim
// corners.
func (g Geometry) cornerTicks() []Guide {
	ox, oy := g.origin()
	cw, ch := g.cell()
	gridL, gridR := ox, ox+float64(g.Columns)*cw
	gridB, gridT := oy, oy+float64(g.Rows)*ch

	var xs, ys []float64
	for col := 0; col < g.Columns; col++ {
		r := g.CardRect(0, col)
		xs = append(xs, r.X, r.X+r.W)
	}
	for row := g.Rows - 1; row >= 0; row-- {
		r := g.CardRect(row, 0)
		ys = append(ys, r.Y, r.Y+r.H)
	}

	var guides []Guide
	for _, x := range xs {
		guides = append(guides,
			Guide{X1: x, Y1: gridB - markGapMM, X2: x, Y2: gridB - markGapMM - markLengthMM},
			Guide{X1: x, Y1: gridT + markGapMM, X2: x, Y2: gridT + markGapMM + markLengthMM},
		)
	}
	for _, y := range ys {
		guides = append(guides,
			Guide{X1: gridL - markGapMM, Y1: y, X2: gridL - markGapMM - markLengthMM, Y2: y},
			Guide{X1: gridR + markGapMM, Y1: y, X2: gridR + markGapMM + markLengthMM, Y2: y},
		)
	}
	return guides
}

// GuideWidth is the stroke width for trim guides in millimeters.
func (g Geometry) GuideWidth() float64 {
	return guideWidthMM
}

// Page is one sheet of a paginated plan.
type Page struct {
	// Start is the index of the first selection item on this page.
	Start int
	// Count is how many slots are filled, at most Capacity.
	Count int
}

// Plan is a complete pagination of a selection onto sheets.
type Plan struct {
	Geometry Geometry
	Total    int
	Pages    []Page
}

// Paginate distributes n selection items over pages in order. Only the last
// page may be partially filled.
func Paginate(g Geometry, n int) (*Plan, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, &LayoutError{Reason: "nothing selected to lay out"}
	}

	cap := g.Capacity()
	plan := &Plan{Geometry: g, Total: n}
	for start := 0; start < n; start += cap {
		count := cap
		if n-start < cap {
			count = n - start
		}
		plan.Pages = append(plan.Pages, Page{Start: start, Count: count})
	}
	return plan, nil
}
