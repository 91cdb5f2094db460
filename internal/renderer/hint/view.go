package hint

import (
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/renderer/backend"
)

// Styles used when drawing the panel.
type Styles struct {
	Border      tcell.Style
	Title       tcell.Style
	Description tcell.Style
	Keys        tcell.Style
	Active      tcell.Style
	Footer      tcell.Style
}

// DefaultStyles returns the panel's default look.
func DefaultStyles() Styles {
	base := tcell.StyleDefault.Background(tcell.ColorBlack)
	return Styles{
		Border:      base.Foreground(tcell.ColorGray),
		Title:       base.Foreground(tcell.ColorViolet).Bold(true),
		Description: base.Foreground(tcell.ColorSilver),
		Keys:        base.Foreground(tcell.ColorWhite),
		Active:      tcell.StyleDefault.Background(tcell.ColorRebeccaPurple).Foreground(tcell.ColorWhite).Bold(true),
		Footer:      base.Foreground(tcell.ColorGray),
	}
}

// margin is the gap kept between the panel and the screen edges.
const margin = 1

// closeMark is drawn at the right of the title row.
const closeMark = "×"

// Layout places a panel holding rows and footer in the bottom-right
// corner of a width x height area, leaving reserve rows free at the
// bottom. It returns an empty rect when the area is too small.
func Layout(width, height, reserve int, rows []Row, footer string) backend.Rect {
	inner := utf8.RuneCountInString(Title) + 2 + utf8.RuneCountInString(closeMark)
	if n := utf8.RuneCountInString(footer); n > inner {
		inner = n
	}
	for _, r := range rows {
		if n := utf8.RuneCountInString(r.Description) + 2 + utf8.RuneCountInString(r.Keys()); n > inner {
			inner = n
		}
	}

	w := inner + 4 // borders and one space of padding each side
	h := len(rows) + 5
	if limit := width - 2*margin; w > limit {
		w = limit
	}
	if w < 12 || h > height-reserve-2*margin {
		return backend.Rect{}
	}

	right := width - margin
	bottom := height - reserve - margin
	return backend.Rect{Left: right - w, Top: bottom - h, Right: right, Bottom: bottom}
}

// Draw renders the panel into box. Nothing is drawn for an empty box.
func Draw(c backend.Canvas, box backend.Rect, rows []Row, footer string, st Styles) {
	if box.Empty() {
		return
	}
	inner := box.Width() - 4

	backend.Box(c, box, st.Border)

	y := box.Top + 1
	fill(c, box.Left+1, y, box.Width()-2, st.Border)
	backend.DrawText(c, box.Left+2, y, inner-2, Title, st.Title)
	backend.DrawText(c, box.Right-3, y, 1, closeMark, st.Border)

	for _, r := range rows {
		y++
		style, keyStyle := st.Description, st.Keys
		if r.Active {
			style, keyStyle = st.Active, st.Active
		}
		fill(c, box.Left+1, y, box.Width()-2, style)

		keys := r.Keys()
		keyWidth := utf8.RuneCountInString(keys)
		if keyWidth > inner {
			keyWidth = inner
		}
		descWidth := inner - keyWidth - 2
		if descWidth > 0 {
			backend.DrawText(c, box.Left+2, y, descWidth, r.Description, style)
		}
		backend.DrawText(c, box.Right-2-keyWidth, y, keyWidth, keys, keyStyle)
	}

	y++
	backend.HLine(c, box.Left, y, box.Width(), tcell.RuneLTee, tcell.RuneHLine, tcell.RuneRTee, st.Border)

	y++
	fill(c, box.Left+1, y, box.Width()-2, st.Footer)
	backend.DrawText(c, box.Left+2, y, inner, footer, st.Footer)
}

func fill(c backend.Canvas, x, y, n int, style tcell.Style) {
	for i := 0; i < n; i++ {
		c.SetContent(x+i, y, ' ', nil, style)
	}
}

func joinLabels(labels []string) string {
	return strings.Join(labels, " + ")
}
