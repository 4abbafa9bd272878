package services

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/examsolver/internal/models"
)

// Geometry fixes the layout of the solutions document. Units are millimetres.
type Geometry struct {
	MarginLeft float64
	MarginTop  float64
	MaxWidth   float64
	LineHeight float64
	// BreakAllowance is the room below the cursor a line needs before it is
	// moved to a new page.
	BreakAllowance float64
	FontFamily     string
	FontSize       float64
}

// DefaultGeometry is Helvetica 12pt on A4 with 10mm margins and 180mm of text width.
func DefaultGeometry() Geometry {
	return Geometry{
		MarginLeft:     10,
		MarginTop:      10,
		MaxWidth:       180,
		LineHeight:     7,
		BreakAllowance: 10,
		FontFamily:     "Helvetica",
		FontSize:       12,
	}
}

// Canvas is the slice of a PDF layout engine the paginator needs.
type Canvas interface {
	SplitText(text string, width float64) []string
	AddPage()
	Text(x, y float64, s string)
	PageHeight() float64
}

// Placement records where one wrapped line was drawn. Page is 1-based.
type Placement struct {
	Page int
	X    float64
	Y    float64
	Text string
}

// Layout is the outcome of paginating a text block.
type Layout struct {
	Pages      int
	Placements []Placement
}

// Paginator lays a text block out over fixed-size pages.
type Paginator struct {
	geometry Geometry
}

func NewPaginator(geometry Geometry) *Paginator {
	return &Paginator{geometry: geometry}
}

// Layout wraps text to the configured width and draws it top to bottom,
// opening a new page whenever the next line would not fit. Lines already
// placed are never moved.
func (p *Paginator) Layout(c Canvas, text string) Layout {
	g := p.geometry
	c.AddPage()
	layout := Layout{Pages: 1}
	pageHeight := c.PageHeight()

	cursorY := g.MarginTop
	for _, line := range c.SplitText(text, g.MaxWidth) {
		if cursorY+g.BreakAllowance > pageHeight {
			c.AddPage()
			layout.Pages++
			cursorY = g.MarginTop
		}
		c.Text(g.MarginLeft, cursorY, line)
		layout.Placements = append(layout.Placements, Placement{
			Page: layout.Pages,
			X:    g.MarginLeft,
			Y:    cursorY,
			Text: line,
		})
		cursorY += g.LineHeight
	}
	return layout
}

// Render paginates text into a PDF named Exam_Solutions.pdf.
func (p *Paginator) Render(text string) (*models.OutputDocument, error) {
	canvas := newFpdfCanvas(p.geometry)
	layout := p.Layout(canvas, text)

	var buf bytes.Buffer
	if err := canvas.Output(&buf); err != nil {
		slog.Error("Failed to render solutions PDF", "error", err, "pages", layout.Pages)
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	slog.Info("Rendered solutions PDF.", "pages", layout.Pages, "lines", len(layout.Placements), "bytes", buf.Len())
	return &models.OutputDocument{
		FileName:  models.OutputFileName,
		PageCount: layout.Pages,
		Data:      buf.Bytes(),
	}, nil
}
