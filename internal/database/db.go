package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema lists the tables the service owns. Statements are idempotent so
// startup can always run them. The unique indexes are load-bearing: the
// repositories rely on uq_equipments_payload, uq_sessions_payload and
// uq_scan_session_student for atomic insert-if-absent semantics, and on
// their names appearing in duplicate-key errors.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(100) NOT NULL,
		full_name     VARCHAR(100) NOT NULL,
		role          VARCHAR(20)  NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS equipments (
		id             VARCHAR(20)  NOT NULL,
		room           VARCHAR(50)  NOT NULL,
		type           VARCHAR(50)  NOT NULL,
		static_payload VARCHAR(200) NOT NULL,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_equipments_payload (static_payload)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id              VARCHAR(36)  NOT NULL,
		name            VARCHAR(100) NOT NULL DEFAULT '',
		equipment_id    VARCHAR(20)  NOT NULL,
		teacher_id      VARCHAR(100) NOT NULL,
		dynamic_payload VARCHAR(100) NOT NULL,
		started_at      DATETIME NOT NULL,
		ended_at        DATETIME NULL,
		active          TINYINT(1) NOT NULL DEFAULT 1,
		PRIMARY KEY (id),
		UNIQUE KEY uq_sessions_payload (dynamic_payload),
		KEY idx_sessions_teacher (teacher_id, equipment_id, active),
		KEY idx_sessions_active_started (active, started_at),
		CONSTRAINT fk_sessions_equipment FOREIGN KEY (equipment_id) REFERENCES equipments (id),
		CONSTRAINT fk_sessions_teacher FOREIGN KEY (teacher_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS scan_logs (
		id         VARCHAR(36)  NOT NULL,
		session_id VARCHAR(36)  NOT NULL,
		student_id VARCHAR(100) NOT NULL,
		scanned_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_scan_session_student (session_id, student_id),
		CONSTRAINT fk_scan_logs_session FOREIGN KEY (session_id) REFERENCES sessions (id),
		CONSTRAINT fk_scan_logs_student FOREIGN KEY (student_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    VARCHAR(100) NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refresh_hash (token_hash)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS inventory_equipments (
		qr_code     CHAR(6) NOT NULL,
		name        VARCHAR(100) NOT NULL,
		description VARCHAR(500) NOT NULL DEFAULT '',
		status      VARCHAR(20)  NOT NULL,
		created_at  VARCHAR(35)  NOT NULL,
		PRIMARY KEY (qr_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS inventory_usages (
		id      VARCHAR(36) NOT NULL,
		qr_code CHAR(6) NOT NULL,
		type    VARCHAR(20) NOT NULL,
		user    VARCHAR(100) NOT NULL DEFAULT '',
		notes   VARCHAR(1000) NOT NULL DEFAULT '',
		ts      VARCHAR(35) NOT NULL,
		PRIMARY KEY (id),
		KEY idx_inventory_usages_qr (qr_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Bootstrap creates the service's tables when they do not exist yet.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
