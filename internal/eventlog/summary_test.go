package eventlog

import "testing"

func TestSummarize(t *testing.T) {
	entries := []Entry{
		{Kind: KindPlay, Name: "a.wav"},
		{Kind: KindPlay, Name: "b.wav"},
		{Kind: KindPlay, Name: "a.wav"},
		{Kind: KindDrop, Name: "a.wav"},
		{Kind: KindCommand, Name: "next"},
	}
	got := Summarize(entries)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Name != "a.wav" || got[0].Plays != 2 || got[0].Drops != 1 {
		t.Errorf("got[0] = %+v, want a.wav 2 plays 1 drop", got[0])
	}
	// Ties sort by name.
	if got[1].Name != "b.wav" || got[2].Name != "next" || got[2].Commands != 1 {
		t.Errorf("got[1:] = %+v", got[1:])
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    EntryKind
		want string
	}{{KindPlay, "play"}, {KindDrop, "drop"}, {KindCommand, "command"}, {EntryKind(9), "unknown"}}
	for _, tt := range tests {
		if got := KindString(tt.k); got != tt.want {
			t.Errorf("KindString(%d) = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestDayCutoff(t *testing.T) {
	c := DayCutoff(1)
	if c.Hour() != 0 || c.Minute() != 0 {
		t.Errorf("DayCutoff(1) = %v, want midnight", c)
	}
	if d := DayCutoff(1).Sub(DayCutoff(8)).Hours(); d < 7*24-1 || d > 7*24+1 {
		t.Errorf("DayCutoff(1) - DayCutoff(8) = %vh, want about 168h", d)
	}
}
