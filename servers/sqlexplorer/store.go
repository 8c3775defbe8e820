package sqlexplorer

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// identPattern matches SQL identifiers that are safe to interpolate into
// PRAGMA statements, which do not support placeholders.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store provides SQLite persistence for the explorer server.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at path, runs migrations, and seeds the demo
// schema when the database holds no user tables yet.
func NewStore(path string) (*Store, error) {
	// modernc.org/sqlite takes pragmas in the DSN as _pragma=name(value).
	// busy_timeout avoids "database locked" errors under concurrent tools.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := store.seedDemo(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed demo data: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the internal insights table.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS insights (
		id TEXT PRIMARY KEY,
		insight TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// seedDemo populates the demo schema on first start. The insights table is
// internal and does not count as user data.
func (s *Store) seedDemo() error {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' AND name != 'insights'`,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	schema := `
	CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		signup_date TEXT NOT NULL
	);
	CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price REAL NOT NULL
	);
	CREATE TABLE orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		order_date TEXT NOT NULL,
		FOREIGN KEY(user_id) REFERENCES users(id),
		FOREIGN KEY(product_id) REFERENCES products(id)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	users := []string{"Alice", "Bob", "Charlie", "Diana", "Eve"}
	for i, name := range users {
		signup := now.AddDate(0, 0, -30*(i+1)).Format(time.RFC3339)
		if _, err := tx.Exec(
			`INSERT INTO users (name, email, signup_date) VALUES (?, ?, ?)`,
			name, strings.ToLower(name)+"@example.com", signup,
		); err != nil {
			return err
		}
	}

	products := []struct {
		name  string
		price float64
	}{
		{"UltraWidget", 19.99},
		{"MegaGadget", 29.95},
		{"Thingamajig", 9.50},
		{"Doohickey", 14.75},
		{"Whatsit", 4.20},
	}
	for _, p := range products {
		if _, err := tx.Exec(
			`INSERT INTO products (name, price) VALUES (?, ?)`,
			p.name, p.price,
		); err != nil {
			return err
		}
	}

	for i := 0; i < 20; i++ {
		orderDate := now.AddDate(0, 0, -(i*7 + 3)).Format(time.RFC3339)
		if _, err := tx.Exec(
			`INSERT INTO orders (user_id, product_id, quantity, order_date) VALUES (?, ?, ?, ?)`,
			i%5+1, (i+2)%5+1, i%9+1, orderDate,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Query runs a read statement and returns the rows as maps keyed by column
// name.
func (s *Store) Query(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Exec runs a write statement and returns the number of affected rows.
func (s *Store) Exec(ctx context.Context, query string) (int64, error) {
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTables returns the names of all user tables, sorted.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	NotNull  bool   `json:"notnull"`
	Default  any    `json:"dflt_value"`
	PrimaryK bool   `json:"pk"`
}

// DescribeTable returns the column layout of a table.
func (s *Store) DescribeTable(ctx context.Context, table string) ([]ColumnInfo, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var (
			cid     int
			col     ColumnInfo
			notNull int
			pk      int
			deflt   sql.NullString
			colType string
			colName string
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &deflt, &pk); err != nil {
			return nil, err
		}
		col.Name = colName
		col.Type = colType
		col.NotNull = notNull != 0
		col.PrimaryK = pk != 0
		if deflt.Valid {
			col.Default = deflt.String
		}
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	return columns, rows.Err()
}
