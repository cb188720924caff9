// Package console renders playback notifications as styled terminal lines.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/icon"
	"github.com/anisan-cli/playerview/playback"
	"github.com/anisan-cli/playerview/resource"
	"github.com/anisan-cli/playerview/style"
	"github.com/anisan-cli/playerview/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
)

const fallbackWidth = 80

// Printer is a playback listener writing one line per notification and a
// rewritable progress line for time updates.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	state func() playback.State
	width func() int

	current  *resource.Resource
	duration time.Duration
	buffered time.Duration
	progress bool
}

// New returns a printer writing to out. state reports the controller state shown on the progress line.
func New(out io.Writer, state func() playback.State) *Printer {
	return &Printer{
		out:   out,
		state: state,
		width: terminalWidth,
	}
}

func terminalWidth() int {
	w, _, err := util.TerminalSize()
	if err != nil || w <= 0 {
		return fallbackWidth
	}
	return w
}

func (p *Printer) track(r *resource.Resource) {
	if p.current != r {
		p.current = r
		p.duration = 0
		p.buffered = 0
	}
}

// line prints a permanent line, first erasing any progress line.
func (p *Printer) line(i icon.Icon, color lipgloss.Color, label string, r *resource.Resource, extra string) {
	if p.progress {
		fmt.Fprint(p.out, "\r\033[K")
		p.progress = false
	}

	head := fmt.Sprintf("%s %s", icon.Get(i), style.Fg(color)(style.Bold(label)))
	if extra != "" {
		head += " " + style.Faint(extra)
	}

	fmt.Fprintln(p.out, head+" "+p.locator(r, ansi.PrintableRuneWidth(head)+1))
}

func (p *Printer) locator(r *resource.Resource, used int) string {
	if r == nil {
		return ""
	}
	return style.Truncate(util.Max(p.width()-used, 0))(r.Locator)
}

func (p *Printer) PlaybackStatus(r *resource.Resource, status engine.ItemStatus, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.track(r)
	switch status {
	case engine.StatusReady:
		p.line(icon.Success, style.SuccessColor, "Ready", r, "")
	case engine.StatusFailed:
		extra := ""
		if err != nil {
			extra = err.Error()
		}
		p.line(icon.Fail, style.ErrorColor, "Failed", r, extra)
	}
}

func (p *Printer) PlaybackDuration(r *resource.Resource, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.track(r)
	p.duration = d
}

func (p *Printer) PlaybackBuffered(r *resource.Resource, tr engine.TimeRange) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.track(r)
	p.buffered = tr.End()
}

func (p *Printer) PlaybackEnded(r *resource.Resource) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.track(r)
	p.line(icon.Ended, style.EndedColor, "Ended", r, util.FormatClock(p.duration))
}

// Time rewrites the progress line. It fits Controller.ObserveTime.
func (p *Printer) Time(position time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var i icon.Icon
	var color lipgloss.Color
	switch p.state() {
	case playback.Playing:
		i, color = icon.Play, style.PlayingColor
	case playback.Paused:
		i, color = icon.Pause, style.PausedColor
	case playback.Loading:
		i, color = icon.Progress, style.LoadingColor
	default:
		i, color = icon.Buffer, style.FaintColor
	}

	clock := util.FormatClock(position)
	if p.duration > 0 {
		clock += " / " + util.FormatClock(p.duration)
	}

	var b strings.Builder
	b.WriteString("\r\033[K")
	b.WriteString(icon.Get(i))
	b.WriteString(" ")
	b.WriteString(style.Fg(color)(clock))
	if p.buffered > position {
		b.WriteString(" ")
		b.WriteString(style.Faint(fmt.Sprintf("(%s buffered)", util.FormatClock(p.buffered))))
	}

	fmt.Fprint(p.out, style.Truncate(p.width())(b.String()))
	p.progress = true
}
