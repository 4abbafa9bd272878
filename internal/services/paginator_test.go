package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/examsolver/internal/models"
)

// recordingCanvas wraps on newlines only and records every draw call.
type recordingCanvas struct {
	height float64
	pages  int
	drawn  []Placement
}

func (c *recordingCanvas) SplitText(text string, _ float64) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (c *recordingCanvas) AddPage() { c.pages++ }

func (c *recordingCanvas) Text(x, y float64, s string) {
	c.drawn = append(c.drawn, Placement{Page: c.pages, X: x, Y: y, Text: s})
}

func (c *recordingCanvas) PageHeight() float64 { return c.height }

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return strings.Join(lines, "\n")
}

func TestLayout_EmptyTextIsOnePageWithoutLines(t *testing.T) {
	canvas := &recordingCanvas{height: 297}
	layout := NewPaginator(DefaultGeometry()).Layout(canvas, "")

	assert.Equal(t, 1, layout.Pages)
	assert.Equal(t, 1, canvas.pages)
	assert.Empty(t, layout.Placements)
	assert.Empty(t, canvas.drawn)
}

func TestLayout_FirstPageHoldsFortyLines(t *testing.T) {
	p := NewPaginator(DefaultGeometry())

	full := p.Layout(&recordingCanvas{height: 297}, numberedLines(40))
	assert.Equal(t, 1, full.Pages)
	require.Len(t, full.Placements, 40)
	assert.Equal(t, 10.0, full.Placements[0].Y)
	assert.InDelta(t, 283.0, full.Placements[39].Y, 1e-9)

	over := p.Layout(&recordingCanvas{height: 297}, numberedLines(41))
	assert.Equal(t, 2, over.Pages)
	last := over.Placements[40]
	assert.Equal(t, 2, last.Page)
	assert.Equal(t, 10.0, last.Y)
	assert.Equal(t, "line 41", last.Text)
}

func TestLayout_BreaksWhenLineReachesBoundary(t *testing.T) {
	g := DefaultGeometry()
	g.LineHeight = 10
	g.BreakAllowance = 10
	// Page height 40 fits lines at 10, 20 and 30; a line at 40 would end at 50.
	layout := NewPaginator(g).Layout(&recordingCanvas{height: 40}, numberedLines(4))

	require.Len(t, layout.Placements, 4)
	assert.Equal(t, 2, layout.Pages)
	assert.Equal(t, 1, layout.Placements[2].Page)
	assert.Equal(t, 30.0, layout.Placements[2].Y)
	assert.Equal(t, 2, layout.Placements[3].Page)
	assert.Equal(t, g.MarginTop, layout.Placements[3].Y)
}

func TestLayout_IsDeterministic(t *testing.T) {
	p := NewPaginator(DefaultGeometry())
	text := numberedLines(137)

	a := p.Layout(&recordingCanvas{height: 297}, text)
	b := p.Layout(&recordingCanvas{height: 297}, text)
	assert.Equal(t, a, b)
	assert.Equal(t, 4, a.Pages)
}

func TestLayout_NoLineSplitAcrossPagesAndOrderKept(t *testing.T) {
	canvas := &recordingCanvas{height: 297}
	layout := NewPaginator(DefaultGeometry()).Layout(canvas, numberedLines(100))

	require.Len(t, layout.Placements, 100)
	assert.Equal(t, canvas.drawn, layout.Placements)
	for i, pl := range layout.Placements {
		assert.Equal(t, fmt.Sprintf("line %d", i+1), pl.Text)
		assert.LessOrEqual(t, pl.Y+10, 297.0)
		if i > 0 && pl.Page == layout.Placements[i-1].Page {
			assert.Greater(t, pl.Y, layout.Placements[i-1].Y)
		}
	}
}

func TestRender_ExamAnswerStartsAtTopMargin(t *testing.T) {
	text := "**Question**: What is 2+2?\n**Answer**: 4\n**Key Concept**: Basic addition."
	p := NewPaginator(DefaultGeometry())

	doc, err := p.Render(text)
	require.NoError(t, err)
	assert.Equal(t, models.OutputFileName, doc.FileName)
	assert.Equal(t, 1, doc.PageCount)
	assert.True(t, strings.HasPrefix(string(doc.Data), "%PDF-"))

	layout := p.Layout(newFpdfCanvas(DefaultGeometry()), text)
	require.Len(t, layout.Placements, 3)
	assert.Equal(t, "**Question**: What is 2+2?", layout.Placements[0].Text)
	assert.Equal(t, "**Answer**: 4", layout.Placements[1].Text)
	assert.Equal(t, "**Key Concept**: Basic addition.", layout.Placements[2].Text)
	assert.Equal(t, 10.0, layout.Placements[0].Y)
	assert.Equal(t, 17.0, layout.Placements[1].Y)
}

func TestRender_LongTextSpansPages(t *testing.T) {
	doc, err := NewPaginator(DefaultGeometry()).Render(numberedLines(95))
	require.NoError(t, err)
	assert.Equal(t, 3, doc.PageCount)

	pages, err := InspectPDF(doc.Data)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}

func TestRender_EmptyTextStillProducesOnePage(t *testing.T) {
	doc, err := NewPaginator(DefaultGeometry()).Render("")
	require.NoError(t, err)

	pages, err := InspectPDF(doc.Data)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestFpdfCanvas_WrapsToWidth(t *testing.T) {
	canvas := newFpdfCanvas(DefaultGeometry())
	canvas.AddPage()
	long := strings.Repeat("solution ", 60)

	lines := canvas.SplitText(long, 180)
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, canvas.pdf.GetStringWidth(line), 180.0)
	}
}

func TestFpdfCanvas_UsesFullWidth(t *testing.T) {
	canvas := newFpdfCanvas(DefaultGeometry())
	canvas.AddPage()

	fits := strings.Repeat("x", 85)
	width := canvas.pdf.GetStringWidth(fits)
	require.Greater(t, width, 178.0)
	require.LessOrEqual(t, width, 180.0)
	assert.Equal(t, []string{fits}, canvas.SplitText(fits, 180))

	assert.Len(t, canvas.SplitText(fits+"x", 180), 2)
}

func TestFpdfCanvas_MapsTextOutsideCoreFont(t *testing.T) {
	canvas := newFpdfCanvas(DefaultGeometry())
	canvas.AddPage()

	lines := canvas.SplitText("café — 2→4", 180)
	require.Len(t, lines, 1)
	assert.Equal(t, "café — 2?4", lines[0])
}
