package notiflist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/inkwell/engage/internal/keys"
	"github.com/inkwell/engage/internal/model"
	"github.com/inkwell/engage/internal/theme"
)

// SelectedMsg is sent when a user opens a notification.
type SelectedMsg struct {
	Notification model.Notification
}

// Model is the notification list view component.
type Model struct {
	list       list.Model
	keys       *keys.KeyMap
	all        []model.Notification
	unreadOnly bool
	width      int
	height     int
}

// New creates a new notification list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetNotifications replaces the displayed collection, preserving the
// cursor position where possible.
func (m *Model) SetNotifications(notifications []model.Notification) tea.Cmd {
	m.all = notifications
	return m.applyFilter()
}

// Selected returns the notification under the cursor.
func (m Model) Selected() (model.Notification, bool) {
	item, ok := m.list.SelectedItem().(NotificationItem)
	if !ok {
		return model.Notification{}, false
	}
	return item.Notification, true
}

// Update handles messages for the notification list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Select):
			n, ok := m.Selected()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return SelectedMsg{Notification: n}
			}

		case key.Matches(msg, m.keys.UnreadOnly):
			m.unreadOnly = !m.unreadOnly
			return m, m.applyFilter()
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the notification list view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when no notifications are present.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.unreadOnly {
		return style.Render("No unread notifications.\nPress u to show all.")
	}
	return style.Render("No notifications yet.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

// applyFilter rebuilds the list items from the full collection and the
// unread-only toggle.
func (m *Model) applyFilter() tea.Cmd {
	var items []list.Item
	for _, n := range m.all {
		if m.unreadOnly && n.Read {
			continue
		}
		items = append(items, NotificationItem{Notification: n})
	}

	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	return cmd
}
