package notifier

import (
	"strings"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/text"
)

const maxStructuredMessageLen = 3800

// MessageSection is one titled block of an alert.
type MessageSection struct {
	Title string
	Lines []string
}

// StructuredMessage is the common layout of every Telegram alert: a header,
// a fenced body of bulleted sections, then footer and timestamp.
type StructuredMessage struct {
	Icon      string
	Title     string
	Sections  []MessageSection
	Footer    string
	Timestamp time.Time
}

// RenderMarkdown renders the message as Telegram Markdown, cut to the
// message size limit.
func (m StructuredMessage) RenderMarkdown() string {
	var parts []string
	if header := strings.TrimSpace(m.Icon + " " + strings.TrimSpace(m.Title)); header != "" {
		parts = append(parts, header)
	}
	if body := m.body(); len(body) > 0 {
		parts = append(parts, "```\n"+strings.Join(body, "\n\n")+"\n```")
	}
	var tail []string
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		tail = append(tail, escapeFence(footer))
	}
	if !m.Timestamp.IsZero() {
		tail = append(tail, "Horário: "+m.Timestamp.Format("2006-01-02 15:04 MST"))
	}
	if len(tail) > 0 {
		parts = append(parts, strings.Join(tail, "\n"))
	}
	return text.Truncate(strings.Join(parts, "\n\n"), maxStructuredMessageLen)
}

// body renders each non-empty section as a block; blank lines are dropped.
func (m StructuredMessage) body() []string {
	blocks := make([]string, 0, len(m.Sections))
	for _, sec := range m.Sections {
		var rows []string
		for _, line := range sec.Lines {
			if line = strings.TrimSpace(line); line != "" {
				rows = append(rows, "- "+escapeFence(line))
			}
		}
		if len(rows) == 0 {
			continue
		}
		if title := strings.TrimSpace(sec.Title); title != "" {
			rows = append([]string{escapeFence(title)}, rows...)
		}
		blocks = append(blocks, strings.Join(rows, "\n"))
	}
	return blocks
}

// escapeFence keeps user text from closing the code block early.
func escapeFence(s string) string {
	return strings.ReplaceAll(s, "```", "'''")
}
