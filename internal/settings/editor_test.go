package settings

import (
	"testing"
)

func TestEditor_DirtyTrackingIsScopedPerApp(t *testing.T) {
	editor := NewEditor(testBundle("http://x:8989"))

	if editor.DirtyAny() {
		t.Fatalf("fresh editor reports unsaved changes")
	}

	editor.Draft("sonarr").HuntMissing = 5
	if !editor.Dirty("sonarr") {
		t.Fatalf("sonarr edit not detected")
	}
	if editor.Dirty("radarr") || editor.Dirty(GeneralTab) {
		t.Fatalf("editing sonarr marked other tabs dirty")
	}

	editor.DraftGeneral().DarkMode = false
	if !editor.Dirty(GeneralTab) {
		t.Fatalf("general edit not detected")
	}

	// Adopting the server bundle clears all dirty state.
	normalized := testBundle("http://x:8989")
	normalized.Sonarr.HuntMissing = 5
	normalized.General.DarkMode = false
	editor.Adopt(normalized)
	if editor.DirtyAny() {
		t.Fatalf("editor dirty after adopting saved bundle")
	}
	if editor.Draft("sonarr").HuntMissing != 5 {
		t.Fatalf("adopted bundle not reflected in draft")
	}
}

func TestEditor_RevertRestoresSavedValues(t *testing.T) {
	editor := NewEditor(testBundle("http://x:8989"))

	editor.Draft("sonarr").APIURL = "http://typo"
	editor.Revert("sonarr")
	if editor.Dirty("sonarr") {
		t.Fatalf("revert left sonarr dirty")
	}
	if editor.Draft("sonarr").APIURL != "http://x:8989" {
		t.Fatalf("revert did not restore saved value")
	}
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"5", 5, false},
		{" 12 ", 12, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-1", 0, true},
		{"3.5", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseCount(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseCount(%q) = %d, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCount(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
