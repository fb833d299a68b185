package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uoscommunity/scorebot/internal/domain"
)

// SQLiteRepository implements Repository with SQLite. last_update is stored as unix seconds.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a new SQLite account repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: nowUTC}
}

func (r *SQLiteRepository) List(ctx context.Context) ([]domain.LinkedAccount, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY tg_uid`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.LinkedAccount
	for rows.Next() {
		a, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return accounts, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(tg_uid) FROM tbl_accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, a domain.LinkedAccount) (*domain.LinkedAccount, error) {
	a.LastUpdate = r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tbl_accounts (tg_uid, tg_name, uos_name, last_update)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (tg_uid) DO NOTHING`,
		a.TelegramID, a.TelegramName, a.UOSName, a.LastUpdate.Unix())
	if err != nil {
		return nil, fmt.Errorf("adding account %d: %w", a.TelegramID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("adding account %d: %w", a.TelegramID, err)
	}
	if n == 0 {
		return nil, ErrAlreadyLinked
	}
	return &a, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, a domain.LinkedAccount) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tbl_accounts SET tg_name = ?, uos_name = ?, last_update = ? WHERE tg_uid = ?`,
		a.TelegramName, a.UOSName, r.now().Unix(), a.TelegramID)
	if err != nil {
		return fmt.Errorf("saving account %d: %w", a.TelegramID, err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) Remove(ctx context.Context, telegramID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tbl_accounts WHERE tg_uid = ?`, telegramID)
	if err != nil {
		return fmt.Errorf("removing account %d: %w", telegramID, err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.LinkedAccount, error) {
	return r.getOne(ctx, selectColumns+` WHERE tg_uid = ?`, telegramID)
}

func (r *SQLiteRepository) GetByTelegramName(ctx context.Context, telegramName string) (*domain.LinkedAccount, error) {
	return r.getOne(ctx, selectColumns+` WHERE tg_name = ? ORDER BY last_update DESC LIMIT 1`, telegramName)
}

func (r *SQLiteRepository) GetByUOSName(ctx context.Context, uosName string) (*domain.LinkedAccount, error) {
	return r.getOne(ctx, selectColumns+` WHERE uos_name = ? ORDER BY last_update DESC LIMIT 1`, uosName)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (*domain.LinkedAccount, error) {
	a, err := scanSQLite(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting account by %v: %w", arg, err)
	}
	return &a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(s scanner) (domain.LinkedAccount, error) {
	var (
		a       domain.LinkedAccount
		updated int64
	)
	if err := s.Scan(&a.TelegramID, &a.TelegramName, &a.UOSName, &updated); err != nil {
		return domain.LinkedAccount{}, err
	}
	a.LastUpdate = time.Unix(updated, 0).UTC()
	return a, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
