// Package tui holds the interactive pod dashboard.
//
// The dashboard is a Bubble Tea program split the usual way:
//
//   - model: dashboard state, messages and the commands that call into the
//     application backend
//   - view: rendering with lipgloss
//   - controller: key and message handling, and the program itself
//   - design: palette and shared styles
//
// Hub callbacks never touch the model directly. They post messages to the
// model's event queue, which a command drains into the update loop.
package tui
