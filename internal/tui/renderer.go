// Package tui renders billpay data for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xraph/billpay/invoice"
)

var (
	accent  = lipgloss.Color("#0EA5E9") // sky
	fg      = lipgloss.Color("#E5E7EB")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	warning = lipgloss.Color("#F59E0B")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	paidStyle     = lipgloss.NewStyle().Foreground(success)
	partialStyle  = lipgloss.NewStyle().Foreground(warning)
	separatorLine = lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("─", 56))
)

const (
	subscriberWidth = 16
	monthWidth      = 10
	amountWidth     = 12
)

// RenderSeed renders invoices as a table, one row per invoice.
func RenderSeed(invs []*invoice.Invoice) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("billpay seed"))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("(%d invoices)", len(invs))))
	b.WriteString("\n")
	b.WriteString(separatorLine)
	b.WriteString("\n")

	if len(invs) == 0 {
		b.WriteString(dimStyle.Render("no invoices"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(row(headStyle, "SUBSCRIBER", "MONTH", "AMOUNT", headStyle.Render("STATUS")))
	for _, inv := range invs {
		b.WriteString(row(lipgloss.NewStyle(), inv.SubscriberNo, inv.Month, inv.Amount.StringFixed(2), renderStatus(inv.Status)))
	}
	return b.String()
}

func row(style lipgloss.Style, subscriber, month, amount, status string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		style.Width(subscriberWidth).Render(subscriber),
		style.Width(monthWidth).Render(month),
		style.Width(amountWidth).Align(lipgloss.Right).Render(amount),
		"  ",
		status,
	) + "\n"
}

func renderStatus(s invoice.Status) string {
	switch s {
	case invoice.StatusPaid:
		return paidStyle.Render(s.String())
	case invoice.StatusPartiallyPaid:
		return partialStyle.Render(s.String())
	default:
		return dimStyle.Render(s.String())
	}
}
