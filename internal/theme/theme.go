package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/inkwell/engage/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// UnreadBadgeStyle highlights the unread counter in the header.
var UnreadBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// DimmedStyle renders read notifications at reduced emphasis.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle renders polling and action failures in the status bar.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// TypeStyle returns a color-coded style for the given notification type.
func TypeStyle(t model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch t {
	case model.NotificationInvitation, model.NotificationInvitationResponse:
		return base.Foreground(ColorMagenta)
	case model.NotificationComment, model.NotificationContentComment:
		return base.Foreground(ColorBlue)
	case model.NotificationContentLike, model.NotificationNewFollower:
		return base.Foreground(ColorRed)
	case model.NotificationContentRating, model.NotificationCreatorReview:
		return base.Foreground(ColorYellow)
	case model.NotificationApproval, model.NotificationMintReady:
		return base.Foreground(ColorGreen)
	case model.NotificationContentPurchase:
		return base.Foreground(ColorGreen)
	case model.NotificationRevenueProposal, model.NotificationCounterProposal:
		return base.Foreground(ColorOrange)
	case model.NotificationSectionUpdate:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// TypeLabel returns a short badge label for the given notification type.
func TypeLabel(t model.NotificationType) string {
	switch t {
	case model.NotificationInvitation:
		return "INV"
	case model.NotificationInvitationResponse:
		return "RSV"
	case model.NotificationComment, model.NotificationContentComment:
		return "CMT"
	case model.NotificationApproval:
		return "APR"
	case model.NotificationSectionUpdate:
		return "SEC"
	case model.NotificationRevenueProposal, model.NotificationCounterProposal:
		return "REV"
	case model.NotificationMintReady:
		return "MNT"
	case model.NotificationContentLike:
		return "LIK"
	case model.NotificationContentRating:
		return "RTG"
	case model.NotificationCreatorReview:
		return "RVW"
	case model.NotificationContentPurchase:
		return "BUY"
	case model.NotificationNewFollower:
		return "FLW"
	default:
		return "NTF"
	}
}
