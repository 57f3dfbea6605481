package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type DB struct {
	conn   *sql.DB
	gorm   *gorm.DB
	dbType string
}

type Config struct {
	Type       string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SQLitePath string
}

func NewDB(config Config) (*DB, error) {
	var conn *sql.DB
	var err error

	switch config.Type {
	case "sqlite":
		conn, err = sql.Open("sqlite3", config.SQLitePath+"?_foreign_keys=on&_busy_timeout=5000")
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			config.Host, config.Port, config.User, config.Password, config.Name)
		conn, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.Type == "sqlite" {
		// One writer at a time; avoids SQLITE_BUSY between history inserts.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var dialector gorm.Dialector
	if config.Type == "sqlite" {
		dialector = &sqlite.Dialector{DriverName: "sqlite3", Conn: conn}
	} else {
		dialector = postgres.New(postgres.Config{Conn: conn})
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialise gorm: %w", err)
	}

	db := &DB{conn: conn, gorm: gdb, dbType: config.Type}

	// PostgreSQL schema comes from the SQL migrations.
	if config.Type == "sqlite" {
		if err := db.createTables(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return db, nil
}

func (db *DB) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS movies (
		idx INTEGER PRIMARY KEY,
		tmdb_id INTEGER NOT NULL,
		title TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS similarity (
		idx INTEGER PRIMARY KEY REFERENCES movies(idx) ON DELETE CASCADE,
		scores TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS recommendation_history (
		id TEXT PRIMARY KEY,
		movie_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		results TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_created_at ON recommendation_history(created_at);
	`

	_, err := db.conn.Exec(query)
	return err
}

func (db *DB) RunMigrations(migrationsPath string) error {
	return NewMigrator(db.conn, db.dbType).Run(migrationsPath)
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) GORM() *gorm.DB {
	return db.gorm
}

func (db *DB) Type() string {
	return db.dbType
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dbType != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
