package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ZaguanLabs/doclai"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

const barWidth = 30

// progressLine redraws a single "label [bar] current/total" line in place.
// A zero value writer disables it.
type progressLine struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	bar   progress.Model
	drawn bool
}

func newProgressLine(w io.Writer, label string) *progressLine {
	return &progressLine{
		w:     w,
		label: label,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
	}
}

// Update implements doclai.ProgressFunc.
func (p *progressLine) Update(current, total int) {
	if p == nil || p.w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	frac := doclai.Progress{Current: current, Total: total}.Fraction()
	fmt.Fprintf(p.w, "\r%s %s %d/%d", labelStyle.Render(p.label), p.bar.ViewAs(frac), current, total)
	p.drawn = true
}

// Done ends the line if anything was drawn.
func (p *progressLine) Done() {
	if p == nil || p.w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}

// printSummary writes the per-document counters.
func printSummary(w io.Writer, name string, res *doclai.ProcessedContent, residual int, elapsed time.Duration) {
	fmt.Fprintf(w, "%s %s in %v\n", titleStyle.Render("Done"), name, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Units found:  %d\n", res.TotalUnits)
	fmt.Fprintf(w, "  Translated:   %s\n", okStyle.Render(fmt.Sprint(res.TranslatedCount)))
	fmt.Fprintf(w, "  From cache:   %d\n", res.CachedCount)
	if res.FallbackCount > 0 || res.OversizeCount > 0 {
		fmt.Fprintf(w, "  Kept source:  %s (%d oversize)\n",
			warnStyle.Render(fmt.Sprint(res.FallbackCount+res.OversizeCount)), res.OversizeCount)
	}
	if residual > 0 {
		fmt.Fprintf(w, "  %s\n", warnStyle.Render(fmt.Sprintf("%d unit(s) still match the source text", residual)))
	}
}
