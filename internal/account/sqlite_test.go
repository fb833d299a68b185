package account

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/uoscommunity/scorebot/internal/database"
	"github.com/uoscommunity/scorebot/internal/domain"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "accounts.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunSQLiteMigrations(ctx, db, os.DirFS("../../cmd/scorebot/migrations/sqlite")); err != nil {
		t.Fatalf("RunSQLiteMigrations: %v", err)
	}

	repo := NewSQLiteRepository(db)
	repo.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return repo
}

func TestSQLiteAddAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	added, err := repo.Add(ctx, domain.LinkedAccount{TelegramID: 42, TelegramName: "alice", UOSName: "uosaccount12"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !added.LastUpdate.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("LastUpdate = %v", added.LastUpdate)
	}

	lookups := map[string]func() (*domain.LinkedAccount, error){
		"by telegram id":   func() (*domain.LinkedAccount, error) { return repo.GetByTelegramID(ctx, 42) },
		"by telegram name": func() (*domain.LinkedAccount, error) { return repo.GetByTelegramName(ctx, "alice") },
		"by uos name":      func() (*domain.LinkedAccount, error) { return repo.GetByUOSName(ctx, "uosaccount12") },
	}
	for name, lookup := range lookups {
		t.Run(name, func(t *testing.T) {
			got, err := lookup()
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if got.TelegramID != added.TelegramID || got.TelegramName != added.TelegramName ||
				got.UOSName != added.UOSName || !got.LastUpdate.Equal(added.LastUpdate) {
				t.Errorf("got %+v, want %+v", *got, *added)
			}
		})
	}
}

func TestSQLiteAddDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if _, err := repo.Add(ctx, domain.LinkedAccount{TelegramID: 42, TelegramName: "alice", UOSName: "uosaccount12"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := repo.Add(ctx, domain.LinkedAccount{TelegramID: 42, TelegramName: "alice", UOSName: "otheraccount"})
	if !errors.Is(err, ErrAlreadyLinked) {
		t.Errorf("error = %v, want ErrAlreadyLinked", err)
	}
}

func TestSQLiteNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if _, err := repo.GetByTelegramID(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByTelegramID error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByTelegramName(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByTelegramName error = %v, want ErrNotFound", err)
	}
	if err := repo.Remove(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove error = %v, want ErrNotFound", err)
	}
	if err := repo.Save(ctx, domain.LinkedAccount{TelegramID: 7}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Save error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteSaveRemoveListCount(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for i, name := range []string{"alice", "bob"} {
		if _, err := repo.Add(ctx, domain.LinkedAccount{TelegramID: int64(i + 1), TelegramName: name, UOSName: name + "account1"}); err != nil {
			t.Fatalf("Add %s: %v", name, err)
		}
	}

	repo.now = func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) }
	if err := repo.Save(ctx, domain.LinkedAccount{TelegramID: 2, TelegramName: "bobby", UOSName: "bobbyaccount"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByTelegramID(ctx, 2)
	if err != nil {
		t.Fatalf("GetByTelegramID: %v", err)
	}
	if got.TelegramName != "bobby" || got.UOSName != "bobbyaccount" {
		t.Errorf("after save got %+v", *got)
	}
	if !got.LastUpdate.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LastUpdate = %v", got.LastUpdate)
	}

	if err := repo.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].TelegramID != 2 {
		t.Errorf("List = %+v", list)
	}
}
