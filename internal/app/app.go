package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/inkwell/engage/internal/bus"
	"github.com/inkwell/engage/internal/engage"
	"github.com/inkwell/engage/internal/keys"
	"github.com/inkwell/engage/internal/theme"
	"github.com/inkwell/engage/internal/ui/notiflist"
)

// busEventMsg carries one service bus event into the Bubble Tea loop.
type busEventMsg struct {
	topic   bus.Topic
	payload any
}

// actionDoneMsg reports the outcome of a notification mutation.
type actionDoneMsg struct {
	err error
}

// Model is the root Bubble Tea model: it routes key input, mirrors the
// service's cached notification state, and renders the layout.
type Model struct {
	svc    *engage.Service
	keys   *keys.KeyMap
	list   notiflist.Model
	help   help.Model
	events chan busEventMsg

	width       int
	height      int
	ready       bool
	showHelp    bool
	unreadCount int
	statusMsg   string
	statusIsErr bool
}

// New creates the root application model over the given service and
// bridges its event bus into the Bubble Tea message loop.
func New(svc *engage.Service) Model {
	k := keys.DefaultKeyMap()
	m := Model{
		svc:    svc,
		keys:   k,
		list:   notiflist.New(k, 80, 24),
		help:   help.New(),
		events: make(chan busEventMsg, 64),
	}

	// Bus handlers run on service goroutines; hand events to the Tea
	// loop through the channel and drop on overflow rather than block
	// a poll cycle.
	forward := func(topic bus.Topic) bus.Handler {
		return func(payload any) {
			select {
			case m.events <- busEventMsg{topic: topic, payload: payload}:
			default:
			}
		}
	}
	for _, topic := range []bus.Topic{
		bus.TopicUpdated,
		bus.TopicNewItems,
		bus.TopicUnreadCountChanged,
		bus.TopicPollingStopped,
		bus.TopicPollingError,
	} {
		svc.Subscribe(topic, forward(topic))
	}

	return m
}

// Init starts polling and begins listening for bus events.
func (m Model) Init() tea.Cmd {
	m.svc.StartPolling()
	return m.waitForEvent()
}

// waitForEvent returns a tea.Cmd that blocks for the next bus event.
// It must be re-armed after every busEventMsg to keep listening.
func (m Model) waitForEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		return <-ch
	}
}

// Update handles messages and dispatches to the list view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, msg.Height-3)
		m.help.Width = msg.Width
		return m, nil

	case busEventMsg:
		return m.handleBusEvent(msg)

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			m.statusIsErr = true
		}
		return m, nil

	case notiflist.SelectedMsg:
		// Opening a notification marks it read; deep-link handling is up
		// to the terminal (the URL is shown in the status bar).
		if msg.Notification.ActionURL != "" {
			m.statusMsg = msg.Notification.ActionURL
			m.statusIsErr = false
		}
		if !msg.Notification.Read {
			return m, m.markRead(msg.Notification.ID)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleBusEvent mirrors service state changes into the view and re-arms
// the event listener.
func (m Model) handleBusEvent(msg busEventMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.topic {
	case bus.TopicUpdated:
		p := msg.payload.(bus.UpdatedPayload)
		m.unreadCount = p.UnreadCount
		cmd = m.list.SetNotifications(p.Notifications)

	case bus.TopicUnreadCountChanged:
		m.unreadCount = msg.payload.(bus.UnreadCountPayload).Count

	case bus.TopicNewItems:
		p := msg.payload.(bus.NewItemsPayload)
		m.statusMsg = fmt.Sprintf("%d new notification(s)", len(p.Notifications))
		m.statusIsErr = false

	case bus.TopicPollingStopped:
		m.statusMsg = "polling paused"
		m.statusIsErr = false

	case bus.TopicPollingError:
		p := msg.payload.(bus.PollingErrorPayload)
		m.statusMsg = fmt.Sprintf("polling stopped after %d failures: %v (r to retry)", p.Failures, p.Err)
		m.statusIsErr = true
	}

	return m, tea.Batch(cmd, m.waitForEvent())
}

// handleKeys processes global key input.
func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.svc.StopPolling()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		// Restarting forces an immediate fetch and clears any give-up
		// state from exhausted retries.
		m.svc.StopPolling()
		m.svc.StartPolling()
		m.statusMsg = "refreshing..."
		m.statusIsErr = false
		return m, nil

	case key.Matches(msg, m.keys.TogglePolling):
		if m.svc.IsPolling() {
			m.svc.StopPolling()
		} else {
			m.svc.StartPolling()
			m.statusMsg = "polling resumed"
			m.statusIsErr = false
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		n, ok := m.list.Selected()
		if !ok || n.Read {
			return m, nil
		}
		return m, m.markRead(n.ID)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead()

	case key.Matches(msg, m.keys.Delete):
		n, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		return m, m.deleteNotification(n.ID)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the header, list, and status bar.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := theme.HeaderStyle.Render("engage")
	if m.unreadCount > 0 {
		header = lipgloss.JoinHorizontal(lipgloss.Top,
			header, " ", theme.UnreadBadgeStyle.Render(fmt.Sprintf("%d unread", m.unreadCount)))
	}

	body := m.list.View()

	status := m.statusBar()
	if m.showHelp {
		status = m.help.View(m.keys)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

// statusBar renders the bottom line: last status message plus polling
// state.
func (m Model) statusBar() string {
	msg := m.statusMsg
	if m.statusIsErr {
		msg = theme.ErrorStyle.Render(msg)
	}

	polling := "polling"
	if !m.svc.IsPolling() {
		polling = "paused"
	}

	left := theme.StatusBarStyle.Render(polling)
	if msg == "" {
		return lipgloss.JoinHorizontal(lipgloss.Top, left, " ",
			theme.HelpStyle.Render("? for help"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", msg)
}

func (m Model) markRead(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return actionDoneMsg{err: svc.MarkRead(context.Background(), id)}
	}
}

func (m Model) markAllRead() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return actionDoneMsg{err: svc.MarkAllRead(context.Background())}
	}
}

func (m Model) deleteNotification(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return actionDoneMsg{err: svc.DeleteNotification(context.Background(), id)}
	}
}
