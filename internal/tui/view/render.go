package view

import (
	"fmt"
	"strings"

	"podctl/internal/podapi"
	"podctl/internal/tui/design"
	"podctl/internal/tui/model"

	"github.com/charmbracelet/lipgloss"
)

// Render draws the whole dashboard for m.
func Render(m *model.Model) string {
	if m.Width == 0 || m.Height == 0 {
		return "Initializing..."
	}

	switch m.CurrentAppMode {
	case model.ModeLogOverlay:
		return renderLogOverlay(m)
	case model.ModeActivityOverlay:
		return renderActivityOverlay(m)
	case model.ModeHelpOverlay:
		return place(m, design.OverlayStyle.Render(
			design.TitleStyle.Render("Keys")+"\n\n"+m.Help.FullHelpView(m.Keys.FullHelp())))
	}

	sections := []string{renderHeader(m), renderBody(m)}
	switch m.CurrentAppMode {
	case model.ModeCreateInput:
		sections = append(sections, renderCreatePrompt(m))
	case model.ModeConfirmDelete:
		sections = append(sections, design.TextWarningStyle.Render(
			fmt.Sprintf("Delete pod %s? (y/n)", m.DeleteName)))
	}
	sections = append(sections, renderFooter(m))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderHeader(m *model.Model) string {
	left := design.TitleStyle.Render("podctl") + "  " + design.Connectivity(m.Online)
	if m.CurrentAppMode == model.ModeLoading {
		left += "  " + m.Spinner.View() + " loading pods"
	}
	right := design.DimStyle.Render(fmt.Sprintf("%d pods", len(m.Pods)))
	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2*design.SpaceSM
	if gap < 1 {
		gap = 1
	}
	return design.HeaderStyle.Width(m.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderBody(m *model.Model) string {
	if m.LastErr != nil && len(m.Pods) == 0 {
		return design.PanelStyle.Render(design.TextErrorStyle.Render("Failed to load pods: " + m.LastErr.Error()))
	}
	if len(m.Pods) == 0 && m.CurrentAppMode != model.ModeLoading {
		return design.PanelStyle.Render(design.DimStyle.Render("No pods. Press n to create one."))
	}
	table := design.PanelStyle.Render(m.PodTable.View())
	if p, ok := m.SelectedPod(); ok {
		return lipgloss.JoinVertical(lipgloss.Left, table, design.PanelStyle.Render(renderPodDetails(p)))
	}
	return table
}

func renderCreatePrompt(m *model.Model) string {
	ids := make([]string, 0, 4)
	for _, t := range podapi.Templates() {
		ids = append(ids, t.ID)
	}
	hint := design.DimStyle.Render("templates: " + strings.Join(ids, ", ") + "  (enter create, esc cancel)")
	return design.InputStyle.Render("New pod: "+m.CreateInput.View()) + "\n" + hint
}

func renderFooter(m *model.Model) string {
	if m.StatusBarMessage == "" {
		return design.StatusBarStyle.Width(m.Width).Render(m.Help.ShortHelpView(m.Keys.ShortHelp()))
	}
	style := design.StatusBarInfoStyle
	switch m.StatusBarMessageType {
	case model.StatusBarSuccess:
		style = design.StatusBarSuccessStyle
	case model.StatusBarError:
		style = design.StatusBarErrorStyle
	case model.StatusBarWarning:
		style = design.StatusBarWarningStyle
	}
	return style.Width(m.Width).Render(m.StatusBarMessage)
}

func renderLogOverlay(m *model.Model) string {
	title := "Logs"
	if m.LogView != nil {
		title = "Logs: " + m.LogView.Pod()
	}
	hint := design.DimStyle.Render("esc close · y copy · ↑/↓ scroll")
	content := design.TitleStyle.Render(title) + "\n" + m.LogViewport.View() + "\n" + hint
	return design.OverlayStyle.Render(content) + "\n" + renderFooter(m)
}

func renderActivityOverlay(m *model.Model) string {
	content := design.TitleStyle.Render("Activity") + "\n" + m.ActivityViewport.View() + "\n" +
		design.DimStyle.Render("L/esc close · ↑/↓ scroll")
	return design.OverlayStyle.Render(content)
}

func place(m *model.Model, content string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content)
}
