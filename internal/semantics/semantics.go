// Package semantics extracts structured data (todo items, calendar events,
// URLs, video identifiers) from the freeform text of a board node.
//
// Every function here is pure: no I/O, no state. Content that matches no
// pattern simply yields an empty result, never an error — the output of the
// action pipeline is review-gated, so parsing degrades gracefully.
package semantics

import (
	"regexp"
	"strings"

	"github.com/rbeckett/ideabomb/internal/models"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[[^\]]*\]\((https?://[^)\s]+)\)`)
	bareURLRe      = regexp.MustCompile(`https?://[^\s)\]>"']+`)

	// Date/time patterns, tried in order per line: full date+time first,
	// then date-only, then a bare time range. Both - and / separators are
	// accepted for dates; keys are normalised to YYYY-MM-DD.
	dateTimeRe  = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})[ T](\d{1,2}:\d{2})`)
	dateOnlyRe  = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	timeRangeRe = regexp.MustCompile(`\d{1,2}:\d{2}\s*-\s*\d{1,2}:\d{2}`)

	// youtubeIDRe recognises the 11-character video id in the common URL
	// shapes: youtu.be/ID, /v/ID, /u/x/ID, /embed/ID, watch?v=ID, &v=ID.
	youtubeIDRe = regexp.MustCompile(`(?:youtu\.be/|/v/|/u/\w/|/embed/|[?&]v=)([A-Za-z0-9_-]{11})`)
)

// ParseLink extracts the first URL from content. A markdown link
// [title](url) wins over a bare http(s) token. When a URL is found both
// return values carry it (content is normalised to the URL itself); when
// none is found url is empty and content is returned untouched.
func ParseLink(content string) (url, normalized string) {
	if m := markdownLinkRe.FindStringSubmatch(content); m != nil {
		return m[1], m[1]
	}
	if m := bareURLRe.FindString(content); m != "" {
		return m, m
	}
	return "", content
}

// ParseTodoItems splits content into lines and turns every bullet line
// ("- " or "* " after trimming) into an unchecked todo item, in source
// order. Lines without a bullet marker are ignored. Callers must not
// overwrite pre-existing items with an empty result.
func ParseTodoItems(content string) []models.TodoItem {
	var items []models.TodoItem
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		var text string
		switch {
		case strings.HasPrefix(trimmed, "- "):
			text = strings.TrimSpace(trimmed[2:])
		case strings.HasPrefix(trimmed, "* "):
			text = strings.TrimSpace(trimmed[2:])
		default:
			continue
		}
		if text == "" {
			continue
		}
		items = append(items, models.TodoItem{Text: text, Done: false})
	}
	return items
}

// ParseCalendarEvents derives an event map from content and merges it over
// existing: keys present in the new content overwrite old values, keys not
// mentioned are preserved. Per line the first matching pattern wins, in the
// order full date+time > date-only > time range; lines matching none are
// dropped. The event description is the line minus the matched token,
// stripped of leading markdown punctuation.
func ParseCalendarEvents(content string, existing map[string]string) map[string]string {
	events := make(map[string]string, len(existing))
	for k, v := range existing {
		events[k] = v
	}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		key, rest := matchEventKey(trimmed)
		if key == "" {
			continue
		}
		events[key] = stripEventPunctuation(rest)
	}
	return events
}

// matchEventKey returns the normalised date/time key for a line and the
// line with the matched token removed, or "" when nothing matches.
func matchEventKey(line string) (key, rest string) {
	if m := dateTimeRe.FindStringSubmatchIndex(line); m != nil {
		sub := dateTimeRe.FindStringSubmatch(line)
		key = normalizeDate(sub[1], sub[2], sub[3]) + " " + padTime(sub[4])
		return key, line[:m[0]] + line[m[1]:]
	}
	if m := dateOnlyRe.FindStringSubmatchIndex(line); m != nil {
		sub := dateOnlyRe.FindStringSubmatch(line)
		key = normalizeDate(sub[1], sub[2], sub[3])
		return key, line[:m[0]] + line[m[1]:]
	}
	if m := timeRangeRe.FindStringIndex(line); m != nil {
		return line[m[0]:m[1]], line[:m[0]] + line[m[1]:]
	}
	return "", line
}

func normalizeDate(y, m, d string) string {
	if len(m) == 1 {
		m = "0" + m
	}
	if len(d) == 1 {
		d = "0" + d
	}
	return y + "-" + m + "-" + d
}

func padTime(t string) string {
	if i := strings.Index(t, ":"); i == 1 {
		return "0" + t
	}
	return t
}

// stripEventPunctuation trims leading markdown markers (*, #, -), colons,
// and surrounding whitespace from an event description.
func stripEventPunctuation(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "*#-: \t"))
}

// ApplyToNode derives a node's type-specific fields from its content,
// honouring the merge policy: todo items and calendar events are only
// replaced or extended by a non-empty parse, never cleared.
func ApplyToNode(n *models.Node) {
	switch n.Type {
	case models.TypeTodo:
		if items := ParseTodoItems(n.Content); len(items) > 0 {
			n.Items = items
		}
	case models.TypeCalendar:
		if events := ParseCalendarEvents(n.Content, n.Events); len(events) > 0 {
			n.Events = events
		}
	case models.TypeYouTube:
		if id := ExtractYouTubeID(n.Content); id != "" {
			n.VideoID = id
		}
	case models.TypeLink, models.TypeImage:
		if url, normalized := ParseLink(n.Content); url != "" {
			n.URL = url
			n.Content = normalized
		}
	}
}

// ExtractYouTubeID returns the 11-character video id found in text, or the
// empty string when no exact id is present.
func ExtractYouTubeID(text string) string {
	if m := youtubeIDRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
