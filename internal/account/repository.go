// Package account stores links between Telegram users and UOS accounts.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uoscommunity/scorebot/internal/domain"
)

var (
	// ErrNotFound indicates that no link matches the lookup.
	ErrNotFound = errors.New("linked account not found")
	// ErrAlreadyLinked indicates that the Telegram user already has a link.
	ErrAlreadyLinked = errors.New("telegram account already linked")
)

// Repository defines persistent storage for linked accounts.
type Repository interface {
	List(ctx context.Context) ([]domain.LinkedAccount, error)
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, a domain.LinkedAccount) (*domain.LinkedAccount, error)
	Save(ctx context.Context, a domain.LinkedAccount) error
	Remove(ctx context.Context, telegramID int64) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.LinkedAccount, error)
	GetByTelegramName(ctx context.Context, telegramName string) (*domain.LinkedAccount, error)
	GetByUOSName(ctx context.Context, uosName string) (*domain.LinkedAccount, error)
}

const selectColumns = `SELECT tg_uid, tg_name, uos_name, last_update FROM tbl_accounts`

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL account repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) List(ctx context.Context) ([]domain.LinkedAccount, error) {
	rows, err := r.pool.Query(ctx, selectColumns+` ORDER BY tg_uid`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.LinkedAccount
	for rows.Next() {
		var a domain.LinkedAccount
		if err := rows.Scan(&a.TelegramID, &a.TelegramName, &a.UOSName, &a.LastUpdate); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return accounts, nil
}

func (r *PgRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(tg_uid) FROM tbl_accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return n, nil
}

func (r *PgRepository) Add(ctx context.Context, a domain.LinkedAccount) (*domain.LinkedAccount, error) {
	var out domain.LinkedAccount
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tbl_accounts (tg_uid, tg_name, uos_name, last_update)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (tg_uid) DO NOTHING
		 RETURNING tg_uid, tg_name, uos_name, last_update`,
		a.TelegramID, a.TelegramName, a.UOSName).Scan(&out.TelegramID, &out.TelegramName, &out.UOSName, &out.LastUpdate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyLinked
		}
		return nil, fmt.Errorf("adding account %d: %w", a.TelegramID, err)
	}
	return &out, nil
}

func (r *PgRepository) Save(ctx context.Context, a domain.LinkedAccount) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tbl_accounts SET tg_name = $2, uos_name = $3, last_update = NOW()
		 WHERE tg_uid = $1`,
		a.TelegramID, a.TelegramName, a.UOSName)
	if err != nil {
		return fmt.Errorf("saving account %d: %w", a.TelegramID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) Remove(ctx context.Context, telegramID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tbl_accounts WHERE tg_uid = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("removing account %d: %w", telegramID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.LinkedAccount, error) {
	return r.getOne(ctx, selectColumns+` WHERE tg_uid = $1`, telegramID)
}

func (r *PgRepository) GetByTelegramName(ctx context.Context, telegramName string) (*domain.LinkedAccount, error) {
	return r.getOne(ctx, selectColumns+` WHERE tg_name = $1 ORDER BY last_update DESC LIMIT 1`, telegramName)
}

func (r *PgRepository) GetByUOSName(ctx context.Context, uosName string) (*domain.LinkedAccount, error) {
	return r.getOne(ctx, selectColumns+` WHERE uos_name = $1 ORDER BY last_update DESC LIMIT 1`, uosName)
}

func (r *PgRepository) getOne(ctx context.Context, query string, arg any) (*domain.LinkedAccount, error) {
	var a domain.LinkedAccount
	err := r.pool.QueryRow(ctx, query, arg).Scan(&a.TelegramID, &a.TelegramName, &a.UOSName, &a.LastUpdate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting account by %v: %w", arg, err)
	}
	a.LastUpdate = a.LastUpdate.UTC()
	return &a, nil
}

var _ Repository = (*PgRepository)(nil)

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
