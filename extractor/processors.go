package extractor

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// RawProcessor emits the runs in stream order. A line break is
// inserted when the vertical position jumps by more than the font
// size, a space when an horizontal gap larger than half a space
// is skipped.
type RawProcessor struct {
	sb   strings.Builder
	last Text
	has  bool
}

func NewRawProcessor() *RawProcessor { return &RawProcessor{} }

func (p *RawProcessor) Run(t Text) {
	if t.S == "" {
		return
	}
	if p.has {
		size := t.FontSize
		if p.last.FontSize > size {
			size = p.last.FontSize
		}
		if size <= 0 {
			size = 1
		}
		if math.Abs(t.Y-p.last.Y) > size {
			p.sb.WriteByte('\n')
		} else if gap := t.X - (p.last.X + p.last.Width); t.SpaceWidth > 0 && gap > t.SpaceWidth/2 {
			p.sb.WriteByte(' ')
		}
	}
	p.sb.WriteString(t.S)
	p.last, p.has = t, true
}

func (p *RawProcessor) Result() string { return p.sb.String() }

// LayoutProcessor rebuilds an approximate page layout: the runs
// are sorted top to bottom and placed on a grid, the column of a
// run being its horizontal offset quantized by the width of a
// space of its font.
type LayoutProcessor struct {
	runs []Text
}

func NewLayoutProcessor() *LayoutProcessor { return &LayoutProcessor{} }

func (p *LayoutProcessor) Run(t Text) {
	if t.S != "" {
		p.runs = append(p.runs, t)
	}
}

func (p *LayoutProcessor) Result() string {
	if len(p.runs) == 0 {
		return ""
	}
	runs := append([]Text(nil), p.runs...)
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Y != runs[j].Y {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})
	minX := runs[0].X
	for _, r := range runs {
		if r.X < minX {
			minX = r.X
		}
	}

	var sb strings.Builder
	lineY := runs[0].Y
	col := 0 // character cell at the end of the current line
	for i, r := range runs {
		tolerance := r.FontSize / 2
		if tolerance < 1 {
			tolerance = 1
		}
		if i > 0 && lineY-r.Y > tolerance {
			sb.WriteByte('\n')
			col = 0
			lineY = r.Y
		}
		unit := r.SpaceWidth
		if unit <= 0 {
			unit = r.FontSize / 2
		}
		if unit <= 0 {
			unit = 1
		}
		target := int(math.Round((r.X - minX) / unit))
		for ; col < target; col++ {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.S)
		col += utf8.RuneCountInString(r.S)
	}
	return sb.String()
}
