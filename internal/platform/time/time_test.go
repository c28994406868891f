package time

import (
	"testing"
	"time"
)

func TestFromUnix(t *testing.T) {
	got := FromUnix(1700000000.5)
	want := time.Unix(1700000000, 500_000_000).UTC()
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("FromUnix = %v, want %v", got, want)
	}
	if !FromUnix(0).Equal(time.Unix(0, 0)) {
		t.Fatalf("FromUnix(0) = %v", FromUnix(0))
	}
}

func TestPtr(t *testing.T) {
	if Ptr(time.Time{}) != nil {
		t.Fatal("zero time should be nil")
	}
	now := time.Now()
	if p := Ptr(now); p == nil || !p.Equal(now) {
		t.Fatalf("Ptr(now) = %v", p)
	}
}
