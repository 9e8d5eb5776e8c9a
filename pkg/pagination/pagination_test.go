package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, MaxLimit + 50: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{CreatedAt: time.Date(2026, 10, 2, 9, 30, 0, 123, time.UTC), ID: uuid.New()}
	decoded, err := ParseCursor(EncodeCursor(original))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) || decoded.ID != original.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", decoded, original)
	}

	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("expected empty cursor to parse as nil, got %v %v", c, err)
	}
	if _, err := ParseCursor("%%%"); err == nil {
		t.Fatal("expected malformed cursor to fail")
	}
}

func TestTrim(t *testing.T) {
	base := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	rows := make([]Cursor, 4)
	for i := range rows {
		rows[i] = Cursor{CreatedAt: base.Add(-time.Duration(i) * time.Minute), ID: uuid.New()}
	}
	identity := func(c Cursor) Cursor { return c }

	page, next := Trim(rows, 3, identity)
	if len(page) != 3 || next == "" {
		t.Fatalf("expected 3 rows and a cursor, got %d %q", len(page), next)
	}
	decoded, err := ParseCursor(next)
	if err != nil {
		t.Fatalf("parse next: %v", err)
	}
	if decoded.ID != rows[2].ID {
		t.Fatalf("expected cursor at last kept row")
	}

	page, next = Trim(rows[:2], 3, identity)
	if len(page) != 2 || next != "" {
		t.Fatalf("expected final page without cursor, got %d %q", len(page), next)
	}
}
