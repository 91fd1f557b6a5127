package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTest(t, ":memory:")
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	entries := []Entry{
		{Session: "a", Source: "let x = 1\nx", Result: 1, HasResult: true},
		{Session: "a", Source: "1 / 0", ErrorCode: "A003", ErrorMessage: "division by constant zero"},
		{Session: "b", Source: "2 + 2", Result: 4, HasResult: true},
	}
	for _, e := range entries {
		if _, err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(got))
	}
	if got[0].Source != "1 / 0" || got[1].Source != "2 + 2" {
		t.Errorf("Recent order = %q, %q", got[0].Source, got[1].Source)
	}
	if got[0].HasResult || got[0].ErrorCode != "A003" {
		t.Errorf("failed entry = %+v", got[0])
	}
	if !got[1].HasResult || got[1].Result != 4 {
		t.Errorf("successful entry = %+v", got[1])
	}
	if !got[1].CreatedAt.Equal(base.Add(3 * time.Second)) {
		t.Errorf("CreatedAt = %v", got[1].CreatedAt)
	}
}

func TestSession(t *testing.T) {
	s := openTest(t, ":memory:")
	ctx := context.Background()

	for _, e := range []Entry{
		{Session: "a", Source: "1", Result: 1, HasResult: true},
		{Session: "b", Source: "2", Result: 2, HasResult: true},
		{Session: "a", Source: "3", Result: 3, HasResult: true},
	} {
		if _, err := s.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Session(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Source != "1" || got[1].Source != "3" {
		t.Errorf("Session(a) = %+v", got)
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(ctx, Entry{Session: "a", Source: "let y = 2\ny", Result: 2, HasResult: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s = openTest(t, path)
	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Source != "let y = 2\ny" {
		t.Errorf("reopened store = %+v", got)
	}
}

func TestCloseNil(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Errorf("Close on nil store: %v", err)
	}
}
