// Package sqlog writes every processed message into a MySQL audit table.
// It is a write-only sink: the simulator never reads it back, the ledger
// stays in-memory.
package sqlog

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
)

type DB struct {
	db *sql.DB
}

func Connect(url string) (*DB, error) {
	db, err := sql.Open("mysql", url)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) Insert(id uint64, direction, status, msisdn, text, rawHex, responseCode string) error {
	stmt, err := db.db.Prepare(`INSERT messages SET message_id=?,direction=?,status=?,msisdn=?,text=?,raw_hex=?,response_code=?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(id, direction, status, msisdn, text, rawHex, responseCode)
	return err
}
