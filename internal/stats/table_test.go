package stats

import "testing"

func TestTableAlignsColumns(t *testing.T) {
	tbl := newTable(column{title: "Badge"}, column{title: "Status"}, column{title: "Progress", right: true})
	tbl.add("Pull Shark", "Active", "13%")
	tbl.add("YOLO", "Profile Highlight", "-")

	lines := tbl.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Badge       Status             Progress" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Pull Shark  Active                  13%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "YOLO        Profile Highlight         -" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTableWithoutTitlesHasNoHeader(t *testing.T) {
	tbl := newTable(column{}, column{right: true})
	tbl.add("Stars", "7")
	tbl.add("Followers", "12,345")
	if got := tbl.String(); got != "Stars           7\nFollowers  12,345" {
		t.Fatalf("unexpected table: %q", got)
	}
}

func TestCellWidthCountsEmojiPresentation(t *testing.T) {
	cases := map[string]int{
		"🦈":     2,
		"❄️":     2,
		"🛠️ Pro": 6,
		"YOLO":   4,
		"❄":      1,
	}
	for in, want := range cases {
		if got := cellWidth(in); got != want {
			t.Fatalf("cellWidth(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTableAlignsVariationSelectorEmoji(t *testing.T) {
	tbl := newTable(column{title: "Badge"}, column{title: "Status"})
	tbl.add("❄️ Arctic", "Retired")
	tbl.add("🦈 Shark", "Active")
	lines := tbl.lines()
	if lines[1] != "❄️ Arctic  Retired" || lines[2] != "🦈 Shark   Active" {
		t.Fatalf("unexpected rows: %q", lines[1:])
	}
}

func TestTableClipsLongCells(t *testing.T) {
	tbl := newTable(column{title: "Badge", max: 8})
	tbl.add("Pair Extraordinaire")
	if got := tbl.lines()[1]; got != "Pair Ex…" {
		t.Fatalf("unexpected clip: %q", got)
	}
	if got := clipCell("YOLO", 8); got != "YOLO" {
		t.Fatalf("short cell should not be clipped: %q", got)
	}
}
