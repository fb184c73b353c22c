package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vk/wodc/internal/session"
)

// DefaultOpenEndedSeconds is the calendar duration assumed for open-ended
// blocks (uncapped ForTime, RFT, CHIPPER) when the caller sets no policy.
const DefaultOpenEndedSeconds = 20 * 60

// ICSOptions configures the calendar rendering.
type ICSOptions struct {
	// Start anchors the event; sessions carry no date of their own.
	Start time.Time
	// OpenEndedSeconds replaces the zero duration of open-ended blocks.
	// Zero selects DefaultOpenEndedSeconds.
	OpenEndedSeconds int
}

// ICS renders the compiled session as a single-event iCalendar document.
// Output is deterministic for a fixed (session, options) pair.
func ICS(s *session.CompiledSession, opts ICSOptions) ([]byte, error) {
	if opts.Start.IsZero() {
		return nil, fmt.Errorf("ics export needs a start time")
	}
	placeholder := opts.OpenEndedSeconds
	if placeholder == 0 {
		placeholder = DefaultOpenEndedSeconds
	}

	start := opts.Start.UTC()
	total := totalSeconds(s, placeholder)
	uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte("wodc:"+s.Title+":"+start.Format(time.RFC3339)))

	var b strings.Builder
	line := func(s string) {
		b.WriteString(foldLine(s))
		b.WriteString("\r\n")
	}
	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//wodc//wodc//EN")
	line("BEGIN:VEVENT")
	line("UID:" + uid.String())
	line("DTSTAMP:" + start.Format("20060102T150405Z"))
	line("DTSTART:" + start.Format("20060102T150405Z"))
	line("DURATION:" + formatDuration(total))
	line("SUMMARY:" + escapeText(s.Title))
	line("DESCRIPTION:" + escapeText(describe(s, placeholder)))
	line("END:VEVENT")
	line("END:VCALENDAR")
	return []byte(b.String()), nil
}

func totalSeconds(s *session.CompiledSession, placeholder int) int {
	total := 0
	for _, cc := range s.Components {
		for _, blk := range cc.Blocks {
			total += effectiveSeconds(blk, placeholder)
		}
	}
	return total
}

func effectiveSeconds(blk *session.CompiledBlock, placeholder int) int {
	if blk.DurationSeconds > 0 {
		return blk.DurationSeconds
	}
	switch blk.Form.Name {
	case "ForTime", "RFT", "CHIPPER":
		return placeholder
	default:
		return 0
	}
}

func describe(s *session.CompiledSession, placeholder int) string {
	var lines []string
	for _, cc := range s.Components {
		for _, blk := range cc.Blocks {
			entry := fmt.Sprintf("%s: %s %s", cc.Alias, blk.Class, blk.Form.Name)
			if secs := effectiveSeconds(blk, placeholder); secs > 0 {
				entry += fmt.Sprintf(" (%d:%02d)", secs/60, secs%60)
			}
			lines = append(lines, entry)
		}
	}
	for _, spec := range s.Scoring {
		lines = append(lines, fmt.Sprintf("score %s: %s", spec.Alias, strings.Join(spec.Fields, "+")))
	}
	return strings.Join(lines, "\n")
}

// formatDuration renders an RFC 5545 duration such as PT45M or PT1H12M30S.
func formatDuration(seconds int) string {
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	out := "PT"
	if h > 0 {
		out += fmt.Sprintf("%dH", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%dM", m)
	}
	if s > 0 || out == "PT" {
		out += fmt.Sprintf("%dS", s)
	}
	return out
}

// escapeText escapes per RFC 5545 TEXT rules.
func escapeText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}

// foldLine folds content lines longer than 75 octets with a space
// continuation.
func foldLine(s string) string {
	const width = 75
	if len(s) <= width {
		return s
	}
	var b strings.Builder
	for len(s) > width {
		cut := width
		// Never split a UTF-8 sequence.
		for cut > 1 && s[cut]&0xC0 == 0x80 {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
	}
	b.WriteString(s)
	return b.String()
}
