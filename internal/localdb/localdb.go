// Package localdb содержит локальное долговременное состояние клиента:
// токен сессии, настройки интерфейса и ограниченную историю сканирований.
// Всё остальное состояние восстанавливается с сервера при запуске.
package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoSession возвращается, если сохранённого токена сессии нет.
var ErrNoSession = errors.New("no stored session")

// ScanHistoryLimit ограничивает количество хранимых записей сканирования.
const ScanHistoryLimit = 10

type sessionRow struct {
	bun.BaseModel `bun:"table:session"`

	ID    int64  `bun:"id,pk"`
	Token string `bun:"token,notnull"`
}

type preferenceRow struct {
	bun.BaseModel `bun:"table:preferences"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// ScanEntry описывает одну запись истории сканирования QR-кодов ячеек.
type ScanEntry struct {
	bun.BaseModel `bun:"table:scan_history"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Code      string    `bun:"code,notnull"`
	BinID     string    `bun:"bin_id"`
	ScannedAt time.Time `bun:"scanned_at,notnull"`
}

// DB предоставляет доступ к локальной базе состояния клиента.
type DB struct {
	sql *sql.DB
	bun *bun.DB
}

// Open открывает локальную базу и создаёт схему при первом запуске.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("state path is required")
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := &DB{
		sql: sqldb,
		bun: bun.NewDB(sqldb, sqlitedialect.New()),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.createSchema(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return db, nil
}

// Close закрывает локальную базу состояния.
func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

func (d *DB) createSchema(ctx context.Context) error {
	models := []any{
		(*sessionRow)(nil),
		(*preferenceRow)(nil),
		(*ScanEntry)(nil),
	}

	for _, m := range models {
		if _, err := d.bun.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// Token возвращает сохранённый токен сессии.
func (d *DB) Token(ctx context.Context) (string, error) {
	row := &sessionRow{}
	err := d.bun.NewSelect().Model(row).Where("id = 1").Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return row.Token, nil
}

// SaveToken сохраняет токен сессии, заменяя предыдущий.
func (d *DB) SaveToken(ctx context.Context, token string) error {
	row := &sessionRow{ID: 1, Token: token}
	_, err := d.bun.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("token = EXCLUDED.token").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearToken удаляет сохранённый токен сессии.
func (d *DB) ClearToken(ctx context.Context) error {
	_, err := d.bun.NewDelete().Model((*sessionRow)(nil)).Where("id = 1").Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Preference возвращает сохранённое значение настройки или пустую строку.
func (d *DB) Preference(ctx context.Context, key string) (string, error) {
	row := &preferenceRow{}
	err := d.bun.NewSelect().Model(row).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read preference: %w", err)
	}
	return row.Value, nil
}

// SavePreference сохраняет значение настройки, заменяя предыдущее.
func (d *DB) SavePreference(ctx context.Context, key, value string) error {
	row := &preferenceRow{Key: key, Value: value}
	_, err := d.bun.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}

// AppendScan добавляет запись в историю сканирований и подрезает её
// до ScanHistoryLimit последних записей.
func (d *DB) AppendScan(ctx context.Context, code, binID string) error {
	entry := &ScanEntry{
		Code:      code,
		BinID:     binID,
		ScannedAt: time.Now(),
	}
	if _, err := d.bun.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("append scan: %w", err)
	}

	_, err := d.bun.NewDelete().
		Model((*ScanEntry)(nil)).
		Where("id NOT IN (SELECT id FROM scan_history ORDER BY id DESC LIMIT ?)", ScanHistoryLimit).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("prune scan history: %w", err)
	}

	return nil
}

// RecentScans возвращает историю сканирований, новые записи первыми.
func (d *DB) RecentScans(ctx context.Context) ([]ScanEntry, error) {
	var entries []ScanEntry
	err := d.bun.NewSelect().
		Model(&entries).
		Order("id DESC").
		Limit(ScanHistoryLimit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("read scan history: %w", err)
	}
	return entries, nil
}
