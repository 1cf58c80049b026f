package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Samantha1101854/pilltime-pro2/internal/alert"
	"github.com/Samantha1101854/pilltime-pro2/internal/model"
	"github.com/Samantha1101854/pilltime-pro2/internal/service"
	"github.com/Samantha1101854/pilltime-pro2/internal/stats"
)

// painter holds the styles of one theme bound to an output.
type painter struct {
	header  lipgloss.Style
	dim     lipgloss.Style
	accent  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	danger  lipgloss.Style
	box     lipgloss.Style
}

func newPainter(w io.Writer, theme model.Theme) painter {
	r := lipgloss.NewRenderer(w)
	// light terminals get darker tones
	c := map[string]string{"header": "81", "dim": "240", "accent": "147", "ok": "114", "warn": "222", "bad": "203", "border": "62"}
	if theme == model.ThemeLight {
		c = map[string]string{"header": "25", "dim": "244", "accent": "91", "ok": "28", "warn": "130", "bad": "160", "border": "25"}
	}
	return painter{
		header:  r.NewStyle().Foreground(lipgloss.Color(c["header"])).Bold(true),
		dim:     r.NewStyle().Foreground(lipgloss.Color(c["dim"])),
		accent:  r.NewStyle().Foreground(lipgloss.Color(c["accent"])),
		success: r.NewStyle().Foreground(lipgloss.Color(c["ok"])),
		warning: r.NewStyle().Foreground(lipgloss.Color(c["warn"])),
		danger:  r.NewStyle().Foreground(lipgloss.Color(c["bad"])),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c["border"])).
			Padding(0, 1),
	}
}

func (p painter) status(s model.DoseStatus) string {
	switch s {
	case model.DoseTaken:
		return p.success.Render(string(s))
	case model.DoseLate:
		return p.warning.Render(string(s))
	case model.DoseMissed:
		return p.danger.Render(string(s))
	}
	return p.dim.Render(string(s))
}

func (p painter) overview(ov stats.Overview) string {
	lines := []string{
		p.header.Render("PillTime"),
		fmt.Sprintf("Active reminders  %d", ov.ActiveReminders),
		fmt.Sprintf("Taken today       %d", ov.TakenToday),
		fmt.Sprintf("Streak            %d day(s)", ov.Streak),
		fmt.Sprintf("Adherence         %d%%", ov.Adherence),
		fmt.Sprintf("Compliance        %d%%", ov.Compliance),
		fmt.Sprintf("Total doses       %d", ov.TotalDoses),
	}
	return p.box.Render(strings.Join(lines, "\n"))
}

func (p painter) reminders(rs []model.Reminder, now time.Time) string {
	if len(rs) == 0 {
		return p.dim.Render("No reminders.")
	}
	var b strings.Builder
	for _, r := range rs {
		when := r.Time.In(now.Location()).Format("Mon 02 Jan 15:04")
		line := fmt.Sprintf("%s  %s", p.accent.Render(when), r.Medication)
		if d := r.DosageLabel(); d != "" {
			line += " " + d
		}
		line += "  " + p.dim.Render(string(r.Recurrence))
		line += "  " + p.status(service.DisplayStatus(r, now))
		line += "  " + countdown(service.Countdown(r, now))
		if r.Notes != "" {
			line += "  " + p.dim.Render("("+r.Notes+")")
		}
		line += "  " + p.dim.Render(r.ID.String())
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p painter) history(es []model.HistoryEntry, loc *time.Location) string {
	if len(es) == 0 {
		return p.dim.Render("No history entries.")
	}
	var b strings.Builder
	for _, e := range es {
		at := stats.EventTime(e).In(loc).Format("2006-01-02 15:04")
		line := fmt.Sprintf("%s  %-8s %s", p.accent.Render(at), string(e.Action), e.Medication)
		if e.Dosage != "" {
			line += " " + e.Dosage
		}
		line += "  " + p.status(stats.Status(e))
		if e.TakenAt != nil {
			line += "  " + p.dim.Render(fmt.Sprintf("%+dm", int(stats.Delay(e).Round(time.Minute)/time.Minute)))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p painter) summaries(ss []stats.MedicationSummary, loc *time.Location) string {
	if len(ss) == 0 {
		return p.dim.Render("No medications tracked yet.")
	}
	var b strings.Builder
	for _, s := range ss {
		last := "Never"
		if s.LastTaken != nil {
			last = s.LastTaken.In(loc).Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "%s\n  taken %d, on time %d, avg delay %dm, adherence %d%%, last %s\n",
			p.header.Render(s.Medication), s.Taken, s.OnTime, s.AverageDelayMinutes, s.AdherenceRate, last)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p painter) insights(in stats.Insights) string {
	hour := "n/a"
	if in.BestHour != nil {
		hour = fmt.Sprintf("%02d:00", *in.BestHour)
	}
	day := in.BestWeekday
	if day == "" {
		day = "n/a"
	}
	lines := []string{
		p.header.Render("Insights"),
		fmt.Sprintf("Best hour        %s", hour),
		fmt.Sprintf("Best weekday     %s", day),
		fmt.Sprintf("Average delay    %dm", in.AverageDelayMinutes),
		fmt.Sprintf("Longest run      %d day(s)", in.Streak),
	}
	return p.box.Render(strings.Join(lines, "\n"))
}

var (
	weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	monthLabels   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

func (p painter) chart(in stats.Insights) string {
	var b strings.Builder
	b.WriteString(p.header.Render("Adherence by weekday"))
	b.WriteString("\n")
	for i, v := range in.Weekday {
		b.WriteString(p.bar(weekdayLabels[i], v))
	}
	b.WriteString(p.header.Render("Adherence by month"))
	b.WriteString("\n")
	for i, v := range in.Monthly {
		b.WriteString(p.bar(monthLabels[i], v))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p painter) bar(label string, pct int) string {
	filled := pct / 5
	style := p.success
	switch {
	case pct < 50:
		style = p.danger
	case pct < 80:
		style = p.warning
	}
	return fmt.Sprintf("%s %s%s %3d%%\n", label,
		style.Render(strings.Repeat("█", filled)),
		p.dim.Render(strings.Repeat("░", 20-filled)), pct)
}

func (p painter) alerts(as []model.Alert) string {
	if len(as) == 0 {
		return p.dim.Render("No alerts due.")
	}
	lines := make([]string, 0, len(as))
	for _, a := range as {
		lines = append(lines, p.warning.Render("⏰ ")+alert.Message(a))
	}
	return strings.Join(lines, "\n")
}

func countdown(d time.Duration) string {
	if d <= 0 {
		return "due now"
	}
	d = d.Round(time.Minute)
	return fmt.Sprintf("in %dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
