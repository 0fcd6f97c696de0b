package archive

import (
	"testing"
	"time"
)

func TestObjectNamePartitionsByMonth(t *testing.T) {
	snapshot := FragmentSnapshot{
		FragmentID: "frag_abc123",
		PromotedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	got := ObjectName(snapshot)
	want := "promotions/2026/03/frag_abc123.json"
	if got != want {
		t.Errorf("ObjectName = %q, want %q", got, want)
	}
}

func TestObjectNameNormalizesZone(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	snapshot := FragmentSnapshot{
		FragmentID: "frag_xyz",
		PromotedAt: time.Date(2025, 12, 31, 23, 0, 0, 0, est),
	}
	got := ObjectName(snapshot)
	want := "promotions/2026/01/frag_xyz.json"
	if got != want {
		t.Errorf("ObjectName = %q, want %q", got, want)
	}
}
