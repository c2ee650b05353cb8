package design

import (
	"podctl/pkg/logging"

	"github.com/charmbracelet/lipgloss"
	corev1 "k8s.io/api/core/v1"
)

// Spacing units
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// Color palette with light/dark variants.
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}

	ColorSuccess = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#3B82F6"}

	ColorBackground        = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0F0F0F"}
	ColorSurface           = lipgloss.AdaptiveColor{Light: "#F9FAFB", Dark: "#1A1A1A"}
	ColorSurfaceAlt        = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#262626"}
	ColorBorder            = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#404040"}
	ColorBackgroundOverlay = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E1E"}

	ColorText          = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
	ColorTextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorTextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
)

var (
	TextStyle          = lipgloss.NewStyle().Foreground(ColorText)
	TextSecondaryStyle = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	TextSuccessStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextErrorStyle     = lipgloss.NewStyle().Foreground(ColorError)
	TextWarningStyle   = lipgloss.NewStyle().Foreground(ColorWarning)
	TextInfoStyle      = lipgloss.NewStyle().Foreground(ColorInfo)
	DimStyle           = lipgloss.NewStyle().Foreground(ColorTextMuted)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Background(ColorSurface).
			Foreground(ColorText).
			Padding(0, SpaceSM)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, SpaceXS)

	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorSurfaceAlt).
			Foreground(ColorText).
			Padding(0, SpaceSM)

	StatusBarSuccessStyle = StatusBarStyle.
				Background(ColorSuccess).
				Foreground(ColorBackground)

	StatusBarErrorStyle = StatusBarStyle.
				Background(ColorError).
				Foreground(ColorBackground)

	StatusBarWarningStyle = StatusBarStyle.
				Background(ColorWarning).
				Foreground(ColorBackground)

	StatusBarInfoStyle = StatusBarStyle.
				Background(ColorInfo).
				Foreground(ColorBackground)

	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Background(ColorBackgroundOverlay).
			Foreground(ColorText).
			Padding(1, SpaceSM)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, SpaceXS)
)

// Log level styles for the activity log.
var (
	LogInfoStyle  = lipgloss.NewStyle().Foreground(ColorText)
	LogWarnStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	LogErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	LogDebugStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)
)

// PhaseStyle colors a pod status by its phase.
func PhaseStyle(phase corev1.PodPhase) lipgloss.Style {
	switch phase {
	case corev1.PodRunning:
		return TextSuccessStyle
	case corev1.PodPending:
		return TextWarningStyle
	case corev1.PodFailed:
		return TextErrorStyle
	case corev1.PodSucceeded:
		return TextInfoStyle
	default:
		return TextSecondaryStyle
	}
}

// PhaseIcon is the status glyph shown next to a pod.
func PhaseIcon(phase corev1.PodPhase) string {
	switch phase {
	case corev1.PodRunning:
		return "●"
	case corev1.PodPending:
		return "◐"
	case corev1.PodFailed:
		return "✗"
	case corev1.PodSucceeded:
		return "✓"
	default:
		return "○"
	}
}

// Connectivity renders the live/offline indicator.
func Connectivity(online bool) string {
	if online {
		return TextSuccessStyle.Render("● live")
	}
	return TextErrorStyle.Render("○ offline")
}

// LogLevelStyle picks the style for an application log entry.
func LogLevelStyle(level logging.LogLevel) lipgloss.Style {
	switch level {
	case logging.LevelDebug:
		return LogDebugStyle
	case logging.LevelWarn:
		return LogWarnStyle
	case logging.LevelError:
		return LogErrorStyle
	default:
		return LogInfoStyle
	}
}

// CenterHorizontal pads content to sit in the middle of width.
func CenterHorizontal(width int, content string) string {
	contentWidth := lipgloss.Width(content)
	if contentWidth >= width {
		return content
	}
	padding := (width - contentWidth) / 2
	return lipgloss.NewStyle().
		PaddingLeft(padding).
		Width(width).
		Render(content)
}

// Initialize sets up the design system
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}
