package ui

import "testing"

func TestNextAppFilter(t *testing.T) {
	order := []string{"all", "sonarr", "radarr", "lidarr", "readarr", "whisparr", "all"}
	for i := 0; i < len(order)-1; i++ {
		if got := nextAppFilter(order[i]); got != order[i+1] {
			t.Errorf("nextAppFilter(%q) = %q, want %q", order[i], got, order[i+1])
		}
	}
	if got := nextAppFilter(""); got != "sonarr" {
		t.Errorf("nextAppFilter(\"\") = %q, want sonarr", got)
	}
	if got := nextAppFilter("unknown"); got != "all" {
		t.Errorf("nextAppFilter(unknown) = %q, want all", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "a", "b"); got != "a" {
		t.Errorf("firstNonEmpty = %q, want a", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty of empties = %q, want empty", got)
	}
}

func TestRenderToggle(t *testing.T) {
	if renderToggle(true) != "[x]" || renderToggle(false) != "[ ]" {
		t.Fatal("toggle rendering changed")
	}
}
