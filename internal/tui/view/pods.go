package view

import (
	"fmt"
	"strings"

	"podctl/internal/podview"
	"podctl/internal/tui/design"

	"github.com/charmbracelet/bubbles/table"
	"github.com/mattn/go-runewidth"
)

// PodRows builds the pod table rows. Cells are truncated to their column
// width by display width, so wide runes do not break alignment.
func PodRows(pods []podview.Pod, cols []table.Column) []table.Row {
	rows := make([]table.Row, 0, len(pods))
	for _, p := range pods {
		url := p.URL()
		if url == "" {
			url = "-"
		}
		cells := []string{
			p.Name,
			fmt.Sprintf("%s %s", design.PhaseIcon(p.Phase()), p.Status),
			p.Image,
			url,
		}
		for i := range cells {
			if i < len(cols) {
				cells[i] = runewidth.Truncate(cells[i], cols[i].Width, "…")
			}
		}
		rows = append(rows, table.Row(cells))
	}
	return rows
}

// ResizeColumns spreads width over the pod columns. The image column takes
// whatever the fixed columns leave over.
func ResizeColumns(cols []table.Column, width int) []table.Column {
	out := append([]table.Column(nil), cols...)
	if len(out) != 4 || width <= 0 {
		return out
	}
	out[0].Width = 24
	out[1].Width = 20
	out[3].Width = 24
	rest := width - out[0].Width - out[1].Width - out[3].Width - 2*len(out) - 4
	if rest < 12 {
		rest = 12
	}
	out[2].Width = rest
	return out
}

func renderPodDetails(p podview.Pod) string {
	phase := p.Phase()
	status := design.PhaseStyle(phase).Render(design.PhaseIcon(phase) + " " + p.Status)
	lines := []string{
		design.TitleStyle.Render(p.Name) + "  " + status,
		design.DimStyle.Render("image:   ") + p.Image,
	}
	if p.CreatedAt != "" {
		lines = append(lines, design.DimStyle.Render("created: ")+p.CreatedAt)
	}
	if p.Address != "" {
		lines = append(lines, design.DimStyle.Render("address: ")+p.Address)
	}
	if url := p.URL(); url != "" {
		label := "url:     "
		if p.IsJupyter() {
			label = "jupyter: "
		}
		lines = append(lines, design.DimStyle.Render(label)+url)
	}
	return strings.Join(lines, "\n")
}
