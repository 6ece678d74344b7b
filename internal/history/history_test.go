package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// stores returns one of each Store implementation for cross-impl test runs.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"mem":    NewMemStore(),
	}
}

func TestRecentReturnsChronologicalTail(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 10; i++ {
				role := "user"
				if i%2 == 1 {
					role = "assistant"
				}
				if err := store.Append(ctx, role, fmt.Sprintf("turn %d", i)); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			turns, err := store.Recent(ctx, 6)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(turns) != 6 {
				t.Fatalf("want 6 turns, got %d", len(turns))
			}
			for i, turn := range turns {
				want := fmt.Sprintf("turn %d", 4+i)
				if turn.Content != want {
					t.Errorf("turns[%d] = %q, want %q", i, turn.Content, want)
				}
			}
		})
	}
}

func TestRecentOnShortLog(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Append(ctx, "user", "hello"); err != nil {
				t.Fatalf("Append: %v", err)
			}

			turns, err := store.Recent(ctx, 6)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(turns) != 1 || turns[0].Content != "hello" {
				t.Fatalf("turns = %+v", turns)
			}
		})
	}
}

func TestRecentOnEmptyLog(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			turns, err := store.Recent(context.Background(), 6)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(turns) != 0 {
				t.Fatalf("want empty, got %+v", turns)
			}
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := first.Append(ctx, "user", "remember me"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	turns, err := second.Recent(ctx, 6)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(turns) != 1 || turns[0].Content != "remember me" {
		t.Fatalf("turns = %+v", turns)
	}
	if turns[0].At.IsZero() {
		t.Error("timestamp should be set by the database")
	}
}
