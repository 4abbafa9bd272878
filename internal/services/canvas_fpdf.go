package services

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// fpdfCanvas draws with one of fpdf's core fonts. Core fonts only cover the
// WinAnsi (CP1252) repertoire, so text is mapped into it on the way in and
// anything outside it becomes '?'.
type fpdfCanvas struct {
	pdf *fpdf.Fpdf
}

func newFpdfCanvas(g Geometry) *fpdfCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(g.MarginLeft, g.MarginTop, g.MarginLeft)
	pdf.SetFont(g.FontFamily, "", g.FontSize)
	// SplitText narrows the width by the cell margin on both sides.
	pdf.SetCellMargin(0)
	return &fpdfCanvas{pdf: pdf}
}

func (c *fpdfCanvas) SplitText(text string, width float64) []string {
	// fpdf's width table is indexed by byte value, so split on the CP1252 form
	// and hand back Unicode lines.
	lines := c.pdf.SplitText(winAnsiRunes(text), width)
	for i, line := range lines {
		lines[i] = fromWinAnsiRunes(line)
	}
	return lines
}

func (c *fpdfCanvas) AddPage() { c.pdf.AddPage() }

func (c *fpdfCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, string(winAnsiBytes(s)))
}

func (c *fpdfCanvas) PageHeight() float64 {
	_, h := c.pdf.GetPageSize()
	return h
}

func (c *fpdfCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}

func winAnsiBytes(s string) []byte {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 {
			out = append(out, byte(r))
			continue
		}
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// winAnsiRunes re-expresses each CP1252 byte as the rune of the same value.
func winAnsiRunes(s string) string {
	b := winAnsiBytes(s)
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func fromWinAnsiRunes(s string) string {
	var sb strings.Builder
	for _, r := range s {
		sb.WriteRune(charmap.Windows1252.DecodeByte(byte(r)))
	}
	return sb.String()
}
