package sql

import (
	"database/sql"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
)

func createPostgresSchema(db *sql.DB) error {
	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS utxos (
        id             TEXT PRIMARY KEY,
        tx_id          TEXT NOT NULL,
        vout           INTEGER NOT NULL DEFAULT 0,
        owner          TEXT NOT NULL,
        amount         BIGINT NOT NULL,
        status         TEXT NOT NULL DEFAULT 'active',
        jurisdiction   TEXT NOT NULL DEFAULT '',
        kyc_tag        TEXT NOT NULL DEFAULT '',
        created_at     TIMESTAMPTZ NOT NULL,
        spending_tx_id TEXT,
        freeze_reason  TEXT,
        seize_reason   TEXT
      )
    `); err != nil {
		return errors.NewStorageError("could not create utxos table", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS ux_utxos_owner ON utxos (owner, status)`); err != nil {
		return errors.NewStorageError("could not create utxos owner index", err)
	}

	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS transactions (
        tx_id    TEXT PRIMARY KEY,
        kind     INTEGER NOT NULL,
        owners   TEXT NOT NULL,
        amount   BIGINT NOT NULL,
        ts       TIMESTAMPTZ NOT NULL,
        metadata TEXT
      )
    `); err != nil {
		return errors.NewStorageError("could not create transactions table", err)
	}

	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS reserves (
        id          INTEGER PRIMARY KEY,
        amount      BIGINT NOT NULL,
        attested_at TIMESTAMPTZ NOT NULL,
        attested_by TEXT NOT NULL
      )
    `); err != nil {
		return errors.NewStorageError("could not create reserves table", err)
	}

	return nil
}

func createSqliteSchema(db *sql.DB) error {
	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS utxos (
        id             TEXT PRIMARY KEY,
        tx_id          TEXT NOT NULL,
        vout           INTEGER NOT NULL DEFAULT 0,
        owner          TEXT NOT NULL,
        amount         INTEGER NOT NULL,
        status         TEXT NOT NULL DEFAULT 'active',
        jurisdiction   TEXT NOT NULL DEFAULT '',
        kyc_tag        TEXT NOT NULL DEFAULT '',
        created_at     TIMESTAMP NOT NULL,
        spending_tx_id TEXT,
        freeze_reason  TEXT,
        seize_reason   TEXT
      )
    `); err != nil {
		return errors.NewStorageError("could not create utxos table", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS ux_utxos_owner ON utxos (owner, status)`); err != nil {
		return errors.NewStorageError("could not create utxos owner index", err)
	}

	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS transactions (
        tx_id    TEXT PRIMARY KEY,
        kind     INTEGER NOT NULL,
        owners   TEXT NOT NULL,
        amount   INTEGER NOT NULL,
        ts       TIMESTAMP NOT NULL,
        metadata TEXT
      )
    `); err != nil {
		return errors.NewStorageError("could not create transactions table", err)
	}

	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS reserves (
        id          INTEGER PRIMARY KEY,
        amount      INTEGER NOT NULL,
        attested_at TIMESTAMP NOT NULL,
        attested_by TEXT NOT NULL
      )
    `); err != nil {
		return errors.NewStorageError("could not create reserves table", err)
	}

	return nil
}
