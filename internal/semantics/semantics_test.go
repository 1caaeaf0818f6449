package semantics

import (
	"testing"
)

func TestParseLink_Markdown(t *testing.T) {
	url, content := ParseLink("see [Go](https://go.dev/doc) for docs")
	if url != "https://go.dev/doc" {
		t.Errorf("url = %q", url)
	}
	if content != url {
		t.Errorf("content = %q, want normalised to url", content)
	}
}

func TestParseLink_BareURL(t *testing.T) {
	url, _ := ParseLink("check http://example.com/page and more")
	if url != "http://example.com/page" {
		t.Errorf("url = %q", url)
	}
}

func TestParseLink_NoURL(t *testing.T) {
	url, content := ParseLink("just some text")
	if url != "" {
		t.Errorf("url = %q, want empty", url)
	}
	if content != "just some text" {
		t.Errorf("content = %q, want untouched", content)
	}
}

func TestParseTodoItems_Bullets(t *testing.T) {
	items := ParseTodoItems("- Buy milk\nnot a bullet\n* Walk dog\n  - indented task")
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	want := []string{"Buy milk", "Walk dog", "indented task"}
	for i, w := range want {
		if items[i].Text != w {
			t.Errorf("items[%d].Text = %q, want %q", i, items[i].Text, w)
		}
		if items[i].Done {
			t.Errorf("items[%d].Done = true, want false", i)
		}
	}
}

func TestParseTodoItems_NoBullets(t *testing.T) {
	if items := ParseTodoItems("plain text\nmore text"); len(items) != 0 {
		t.Errorf("items = %v, want empty", items)
	}
}

func TestParseTodoItems_EmptyMarker(t *testing.T) {
	if items := ParseTodoItems("- \n-\n* "); len(items) != 0 {
		t.Errorf("items = %v, want empty", items)
	}
}

func TestParseCalendarEvents_DateTime(t *testing.T) {
	events := ParseCalendarEvents("* 2025-03-14 09:30 Standup meeting", nil)
	if got := events["2025-03-14 09:30"]; got != "Standup meeting" {
		t.Errorf("events = %v", events)
	}
}

func TestParseCalendarEvents_DateOnly(t *testing.T) {
	events := ParseCalendarEvents("2025/03/14 - Pi day", nil)
	if got := events["2025-03-14"]; got != "Pi day" {
		t.Errorf("events = %v", events)
	}
}

func TestParseCalendarEvents_TimeRange(t *testing.T) {
	events := ParseCalendarEvents("10:00 - 11:30: Design review", nil)
	if got := events["10:00 - 11:30"]; got != "Design review" {
		t.Errorf("events = %v", events)
	}
}

func TestParseCalendarEvents_DateTimeBeatsRange(t *testing.T) {
	// A line carrying both a full date+time and a range keys on the former.
	events := ParseCalendarEvents("2025-03-14 09:30 - 10:30 Sync", nil)
	if _, ok := events["2025-03-14 09:30"]; !ok {
		t.Errorf("events = %v, want key 2025-03-14 09:30", events)
	}
}

func TestParseCalendarEvents_MergePreservesOldKeys(t *testing.T) {
	existing := map[string]string{
		"2025-01-01": "New year",
		"2025-03-14": "old value",
	}
	events := ParseCalendarEvents("2025-03-14 Pi day", existing)
	if events["2025-01-01"] != "New year" {
		t.Errorf("unrelated key lost: %v", events)
	}
	if events["2025-03-14"] != "Pi day" {
		t.Errorf("key not overwritten: %v", events)
	}
	// Input map untouched.
	if existing["2025-03-14"] != "old value" {
		t.Errorf("existing map mutated: %v", existing)
	}
}

func TestParseCalendarEvents_UnmatchedLinesDropped(t *testing.T) {
	events := ParseCalendarEvents("# Agenda\nno dates here\n2025-06-01 Release", nil)
	if len(events) != 1 {
		t.Errorf("events = %v, want 1 entry", events)
	}
}

func TestExtractYouTubeID_Shapes(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":       "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                      "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":         "dQw4w9WgXcQ",
		"https://www.youtube.com/v/dQw4w9WgXcQ":             "dQw4w9WgXcQ",
		"https://example.com/watch?list=abc&v=dQw4w9WgXcQ":  "dQw4w9WgXcQ",
		"https://example.com/not-a-video":                   "",
		"plain text":                                        "",
	}
	for in, want := range cases {
		if got := ExtractYouTubeID(in); got != want {
			t.Errorf("ExtractYouTubeID(%q) = %q, want %q", in, got, want)
		}
	}
}
