package provider

import "testing"

func TestExternalIDFromIMDb(t *testing.T) {
	tests := []struct {
		name     string
		nativeID string
		want     int64
	}{
		{"tt prefix", "tt0111161", 111161},
		{"other two letter prefix", "nm0000123", 123},
		{"bare digits", "4154796", 4154796},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExternalIDFromIMDb(tt.nativeID, "Title", "1994"); got != tt.want {
				t.Errorf("ExternalIDFromIMDb(%q) = %d, want %d", tt.nativeID, got, tt.want)
			}
		})
	}
}

func TestExternalIDFallsBackToHash(t *testing.T) {
	for _, nativeID := range []string{"", "tt", "ttabc", "tt0000000", "tt-5"} {
		got := ExternalIDFromIMDb(nativeID, "Inception", "2010")
		want := FallbackExternalID("Inception", "2010")
		if got != want {
			t.Errorf("ExternalIDFromIMDb(%q) = %d, want fallback %d", nativeID, got, want)
		}
	}
}

func TestFallbackExternalIDDeterministic(t *testing.T) {
	a := FallbackExternalID("The Matrix", "1999")
	b := FallbackExternalID("The Matrix", "1999")
	if a != b {
		t.Fatalf("same input produced %d and %d", a, b)
	}
	if c := FallbackExternalID("The Matrix", "2003"); c == a {
		t.Errorf("different years collided: %d", c)
	}
}

func TestFallbackExternalIDMatchesJavaStyleHash(t *testing.T) {
	// "ab" -> 97*31 + 98 = 3105，小于下限后上移
	if got := FallbackExternalID("a", "b"); got != 3105+MinFallbackExternalID {
		t.Errorf("got %d, want %d", got, 3105+MinFallbackExternalID)
	}
	// 空输入哈希为 0
	if got := FallbackExternalID("", ""); got != MinFallbackExternalID {
		t.Errorf("empty input = %d, want %d", got, MinFallbackExternalID)
	}
}

func TestFallbackExternalIDAlwaysAboveFloor(t *testing.T) {
	inputs := [][2]string{
		{"", ""}, {"a", ""}, {"Amélie", "2001"}, {"千と千尋の神隠し", "2001"},
		{"Star Wars: Episode IV - A New Hope", "1977"}, {"x", "1"},
	}
	seen := map[int64]string{}
	for _, in := range inputs {
		id := FallbackExternalID(in[0], in[1])
		if id < MinFallbackExternalID {
			t.Errorf("FallbackExternalID(%q, %q) = %d below floor", in[0], in[1], id)
		}
		if prev, ok := seen[id]; ok {
			t.Errorf("collision between %q and %q", prev, in[0]+in[1])
		}
		seen[id] = in[0] + in[1]
	}
}
