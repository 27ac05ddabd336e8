package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tasks/internal/core/styles"
)

const (
	defaultToastTTL   = 3 * time.Second
	defaultMaxToasts  = 3
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 40
)

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)

type toast struct {
	text      string
	level     toastLevel
	remaining time.Duration
}

// ToastController tracks short-lived messages and their remaining time.
type ToastController struct {
	ttl     time.Duration
	toasts  []toast
	ticking bool
}

// NewToastController creates a controller whose toasts live for ttl.
// A non-positive ttl uses the default.
func NewToastController(ttl time.Duration) *ToastController {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	return &ToastController{ttl: ttl}
}

// Push adds a toast, evicting the oldest beyond defaultMaxToasts.
func (c *ToastController) Push(text string, level toastLevel) {
	c.toasts = append(c.toasts, toast{text: text, level: level, remaining: c.ttl})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick ages every toast by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool { return len(c.toasts) > 0 }

// startTicking returns the tick command when the timer is not running yet.
func (c *ToastController) startTicking() tea.Cmd {
	if c.ticking || !c.HasToasts() {
		return nil
	}
	c.ticking = true
	return scheduleToastTick()
}

// handleTick ages the toasts and keeps the timer going while any remain.
func (c *ToastController) handleTick() tea.Cmd {
	c.Tick(toastTickInterval)
	if !c.HasToasts() {
		c.ticking = false
		return nil
	}
	return scheduleToastTick()
}

// View renders the toast stack, oldest first.
func (c *ToastController) View() string {
	if len(c.toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(c.toasts))
	for _, t := range c.toasts {
		rendered = append(rendered, renderToast(t))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func renderToast(t toast) string {
	var style lipgloss.Style
	icon := "•"

	switch t.level {
	case toastSuccess:
		style, icon = styles.ToastSuccessStyle, styles.IconDone
	case toastError:
		style, icon = styles.ToastErrorStyle, "!"
	default:
		style = styles.ToastStyle
	}

	return style.Width(toastWidth).Render(strings.TrimSpace(icon + " " + t.text))
}

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}
