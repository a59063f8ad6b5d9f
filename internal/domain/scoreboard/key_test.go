package scoreboard

import "testing"

func TestParseSport(t *testing.T) {
	cases := map[string]Sport{
		"cfb":  SportCFB,
		"CBB":  SportCBB,
		" cfb": SportCFB,
	}
	for input, expected := range cases {
		got, err := ParseSport(input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if got != expected {
			t.Fatalf("sport %q expected %s, got %s", input, expected, got)
		}
	}
	if _, err := ParseSport("nfl"); err == nil {
		t.Fatal("expected error for unknown sport")
	}
}

func TestNewKeyNormalizesDate(t *testing.T) {
	compact, err := NewKey("20251123", "cfb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hyphen, err := NewKey("2025-11-23", "cfb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if compact != hyphen {
		t.Fatalf("expected equal keys, got %+v and %+v", compact, hyphen)
	}
	if compact.CompactDate() != "20251123" {
		t.Fatalf("expected compact date, got %s", compact.CompactDate())
	}
	if compact.String() != "cfb/2025-11-23" {
		t.Fatalf("unexpected key string %s", compact.String())
	}
}

func TestNewKeyEmptyDateIsInvalid(t *testing.T) {
	key, err := NewKey("", "cbb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.Valid() {
		t.Fatalf("expected key without date to be invalid")
	}
	if key.CompactDate() != "" {
		t.Fatalf("expected empty compact date")
	}
}

func TestNewKeyRejectsBadDate(t *testing.T) {
	if _, err := NewKey("not-a-date", "cfb"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}
