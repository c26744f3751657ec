// Package sql is a database-backed utxo store supporting postgres for
// deployments and sqlite for development.
package sql

import (
	"context"
	"database/sql"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/lifafa03/USDw-stablecoin-sub000/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	prometheusUtxoGet    prometheus.Counter
	prometheusUtxoCreate prometheus.Counter
	prometheusUtxoSpend  prometheus.Counter
	prometheusUtxoErrors *prometheus.CounterVec
)

func init() {
	prometheusUtxoGet = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sql_utxo_get",
			Help: "Number of utxo get calls done to sql",
		},
	)
	prometheusUtxoCreate = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sql_utxo_create",
			Help: "Number of utxo create calls done to sql",
		},
	)
	prometheusUtxoSpend = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sql_utxo_spend",
			Help: "Number of utxo spend calls done to sql",
		},
	)
	prometheusUtxoErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sql_utxo_errors",
			Help: "Number of utxo errors",
		},
		[]string{
			"function",
			"error",
		},
	)
}

var _ utxo.Store = &Store{}

type Store struct {
	logger    ulogger.Logger
	db        *sql.DB
	engine    string
	dbTimeout time.Duration
}

func New(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*Store, error) {
	db, err := util.InitSQLDB(logger, storeURL)
	if err != nil {
		return nil, errors.NewStorageError("failed to init sql db", err)
	}

	switch storeURL.Scheme {
	case "postgres":
		if err = createPostgresSchema(db); err != nil {
			return nil, errors.NewStorageError("failed to create postgres schema", err)
		}

	case "sqlite", "sqlitememory":
		if err = createSqliteSchema(db); err != nil {
			return nil, errors.NewStorageError("failed to create sqlite schema", err)
		}

	default:
		return nil, errors.NewConfigurationError("unknown database engine: %s", storeURL.Scheme)
	}

	s := &Store{
		logger:    logger,
		db:        db,
		engine:    storeURL.Scheme,
		dbTimeout: tSettings.UtxoStore.DBTimeout,
	}

	return s, nil
}

func (s *Store) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	if checkLiveness {
		return http.StatusOK, "SQL Store", nil
	}

	if err := s.db.PingContext(ctx); err != nil {
		return http.StatusServiceUnavailable, "SQL Store unreachable", err
	}

	return http.StatusOK, "SQL Engine is " + s.engine, nil
}

func isUniqueConstraintErr(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return true
	}

	// sqlite reports duplicate primary keys with the PRIMARYKEY extended
	// code, explicit unique indexes with UNIQUE
	if sqliteErr, ok := err.(*sqlite.Error); ok {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	return false
}

func (s *Store) Create(ctx context.Context, u *utxo.UTXO) error {
	prometheusUtxoCreate.Inc()

	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	status := u.Status
	if status == "" {
		status = utxo.StatusActive
	}

	q := `
		INSERT INTO utxos (id, tx_id, vout, owner, amount, status, jurisdiction, kyc_tag, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if _, err := s.db.ExecContext(ctx, q, u.ID, u.TxID, u.Vout, u.Owner, int64(u.Amount), string(status), u.Jurisdiction, u.KYCTag, u.CreatedAt.UTC()); err != nil {
		if isUniqueConstraintErr(err) {
			return errors.NewStorageError("utxo %s already exists", u.ID, err)
		}

		prometheusUtxoErrors.WithLabelValues("Create", err.Error()).Inc()

		return errors.NewStorageError("failed to insert utxo %s", u.ID, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*utxo.UTXO, error) {
	prometheusUtxoGet.Inc()

	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	return s.get(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) get(ctx context.Context, q querier, id string) (*utxo.UTXO, error) {
	query := `
		SELECT id, tx_id, vout, owner, amount, status, jurisdiction, kyc_tag, created_at, spending_tx_id, freeze_reason, seize_reason
		FROM utxos
		WHERE id = $1
	`

	u := &utxo.UTXO{}

	var (
		amount       int64
		status       string
		spendingTxID sql.NullString
		freezeReason sql.NullString
		seizeReason  sql.NullString
	)

	err := q.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.TxID, &u.Vout, &u.Owner, &amount, &status,
		&u.Jurisdiction, &u.KYCTag, &u.CreatedAt,
		&spendingTxID, &freezeReason, &seizeReason,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewUtxoNotFoundError("utxo %s not found", id)
		}

		prometheusUtxoErrors.WithLabelValues("Get", err.Error()).Inc()

		return nil, errors.NewStorageError("failed to get utxo %s", id, err)
	}

	u.Amount = uint64(amount)
	u.Status = utxo.Status(status)
	u.SpendingTxID = spendingTxID.String
	u.FreezeReason = freezeReason.String
	u.SeizeReason = seizeReason.String

	return u, nil
}

func (s *Store) GetByOwner(ctx context.Context, owner string) ([]*utxo.UTXO, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	query := `
		SELECT id, tx_id, vout, owner, amount, status, jurisdiction, kyc_tag, created_at, freeze_reason
		FROM utxos
		WHERE owner = $1 AND status IN ('active', 'frozen')
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, errors.NewStorageError("failed to get utxos for %s", owner, err)
	}
	defer rows.Close()

	out := make([]*utxo.UTXO, 0)

	for rows.Next() {
		u := &utxo.UTXO{}

		var (
			amount       int64
			status       string
			freezeReason sql.NullString
		)

		if err = rows.Scan(&u.ID, &u.TxID, &u.Vout, &u.Owner, &amount, &status, &u.Jurisdiction, &u.KYCTag, &u.CreatedAt, &freezeReason); err != nil {
			return nil, errors.NewStorageError("failed to scan utxo row", err)
		}

		u.Amount = uint64(amount)
		u.Status = utxo.Status(status)
		u.FreezeReason = freezeReason.String

		out = append(out, u)
	}

	return out, rows.Err()
}

func (s *Store) Spend(ctx context.Context, spends []*utxo.Spend) error {
	prometheusUtxoSpend.Inc()

	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin spend tx", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	for _, spend := range spends {
		u, err := s.get(ctx, tx, spend.UtxoID)
		if err != nil {
			return err
		}

		if u.Status == utxo.StatusSpent {
			return errors.NewUtxoSpentErr(u.ID, u.SpendingTxID, spend.SpendingTime, nil)
		}

		if _, err = utxo.Transition(ctx, u.Status, utxo.EventSpend); err != nil {
			return err
		}

		q := `UPDATE utxos SET status = 'spent', spending_tx_id = $1 WHERE id = $2 AND status = 'active'`

		res, err := tx.ExecContext(ctx, q, spend.SpendingTxID, spend.UtxoID)
		if err != nil {
			prometheusUtxoErrors.WithLabelValues("Spend", err.Error()).Inc()

			return errors.NewStorageError("failed to spend utxo %s", spend.UtxoID, err)
		}

		n, _ := res.RowsAffected()
		if n != 1 {
			return errors.NewSpentError("utxo %s changed status during spend", spend.UtxoID)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.NewStorageError("failed to commit spend tx", err)
	}

	return nil
}

func (s *Store) UnSpend(ctx context.Context, spends []*utxo.Spend) error {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	q := `UPDATE utxos SET status = 'active', spending_tx_id = NULL WHERE id = $1 AND status = 'spent' AND spending_tx_id = $2`

	for _, spend := range spends {
		if _, err := s.db.ExecContext(ctx, q, spend.UtxoID, spend.SpendingTxID); err != nil {
			return errors.NewStorageError("failed to unspend utxo %s", spend.UtxoID, err)
		}
	}

	return nil
}

func (s *Store) Freeze(ctx context.Context, id string, reason string) error {
	return s.transition(ctx, id, utxo.EventFreeze, `UPDATE utxos SET status = 'frozen', freeze_reason = $1 WHERE id = $2`, reason)
}

func (s *Store) UnFreeze(ctx context.Context, id string) error {
	return s.transition(ctx, id, utxo.EventUnfreeze, `UPDATE utxos SET status = 'active', freeze_reason = NULL WHERE id = $1`)
}

func (s *Store) Seize(ctx context.Context, id string, reason string) error {
	return s.transition(ctx, id, utxo.EventSeize, `UPDATE utxos SET status = 'seized', seize_reason = $1 WHERE id = $2`, reason)
}

func (s *Store) transition(ctx context.Context, id string, event string, query string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin tx", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	u, err := s.get(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err = utxo.Transition(ctx, u.Status, event); err != nil {
		return err
	}

	args = append(args, id)

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		prometheusUtxoErrors.WithLabelValues(event, err.Error()).Inc()

		return errors.NewStorageError("failed to %s utxo %s", event, id, err)
	}

	return tx.Commit()
}

func (s *Store) Scan(ctx context.Context, fn func(u *utxo.UTXO) error) error {
	query := `
		SELECT id, tx_id, vout, owner, amount, status, jurisdiction, kyc_tag, created_at, spending_tx_id, freeze_reason, seize_reason
		FROM utxos
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return errors.NewStorageError("failed to scan utxos", err)
	}
	defer rows.Close()

	for rows.Next() {
		u := &utxo.UTXO{}

		var (
			amount       int64
			status       string
			spendingTxID sql.NullString
			freezeReason sql.NullString
			seizeReason  sql.NullString
		)

		if err = rows.Scan(&u.ID, &u.TxID, &u.Vout, &u.Owner, &amount, &status, &u.Jurisdiction, &u.KYCTag, &u.CreatedAt, &spendingTxID, &freezeReason, &seizeReason); err != nil {
			return errors.NewStorageError("failed to scan utxo row", err)
		}

		u.Amount = uint64(amount)
		u.Status = utxo.Status(status)
		u.SpendingTxID = spendingTxID.String
		u.FreezeReason = freezeReason.String
		u.SeizeReason = seizeReason.String

		if err = fn(u); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (s *Store) TotalSupply(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	var total sql.NullInt64

	q := `SELECT SUM(amount) FROM utxos WHERE status IN ('active', 'frozen')`

	if err := s.db.QueryRowContext(ctx, q).Scan(&total); err != nil {
		return 0, errors.NewStorageError("failed to sum supply", err)
	}

	return uint64(total.Int64), nil
}

func (s *Store) VerifiedReserves(ctx context.Context) (*utxo.ReserveState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	state := &utxo.ReserveState{}

	var amount int64

	q := `SELECT amount, attested_at, attested_by FROM reserves WHERE id = 1`

	err := s.db.QueryRowContext(ctx, q).Scan(&amount, &state.AttestedAt, &state.AttestedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return &utxo.ReserveState{}, nil
		}

		return nil, errors.NewStorageError("failed to get reserves", err)
	}

	state.Amount = uint64(amount)

	return state, nil
}

func (s *Store) SetVerifiedReserves(ctx context.Context, state *utxo.ReserveState) error {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	q := `
		INSERT INTO reserves (id, amount, attested_at, attested_by)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET amount = $1, attested_at = $2, attested_by = $3
	`

	if _, err := s.db.ExecContext(ctx, q, int64(state.Amount), state.AttestedAt.UTC(), state.AttestedBy); err != nil {
		return errors.NewStorageError("failed to set reserves", err)
	}

	return nil
}

func (s *Store) SaveTransaction(ctx context.Context, rec *model.TxRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	owners, err := jsoniter.MarshalToString(rec.Owners)
	if err != nil {
		return errors.NewProcessingError("failed to marshal owners", err)
	}

	metadata, err := jsoniter.MarshalToString(rec.Metadata)
	if err != nil {
		return errors.NewProcessingError("failed to marshal metadata", err)
	}

	q := `
		INSERT INTO transactions (tx_id, kind, owners, amount, ts, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err = s.db.ExecContext(ctx, q, rec.TxID, int(rec.Kind), owners, int64(rec.Amount), rec.Timestamp.UTC(), metadata); err != nil {
		if isUniqueConstraintErr(err) {
			return errors.NewTxAlreadyExistsError("%s already exists", rec.TxID, err)
		}

		return errors.NewStorageError("failed to save transaction %s", rec.TxID, err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, txID string) (*model.TxRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	q := `SELECT tx_id, kind, owners, amount, ts, metadata FROM transactions WHERE tx_id = $1`

	rec, err := scanTxRecord(s.db.QueryRowContext(ctx, q, txID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewTxNotFoundError("%s not found", txID)
		}

		return nil, errors.NewStorageError("failed to get transaction %s", txID, err)
	}

	return rec, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTxRecord(row rowScanner) (*model.TxRecord, error) {
	rec := &model.TxRecord{}

	var (
		kind     int
		owners   string
		amount   int64
		metadata string
	)

	if err := row.Scan(&rec.TxID, &kind, &owners, &amount, &rec.Timestamp, &metadata); err != nil {
		return nil, err
	}

	rec.Kind = model.TxKind(kind)
	rec.Amount = uint64(amount)

	if err := jsoniter.UnmarshalFromString(owners, &rec.Owners); err != nil {
		return nil, err
	}

	if metadata != "" && metadata != "null" {
		if err := jsoniter.UnmarshalFromString(metadata, &rec.Metadata); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

func (s *Store) ListTransactionsByOwner(ctx context.Context, owner string, limit, offset int) ([]*model.TxRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	// owners is a json array, match on the quoted owner string
	q := `
		SELECT tx_id, kind, owners, amount, ts, metadata
		FROM transactions
		WHERE owners LIKE $1
		ORDER BY ts DESC, tx_id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, q, `%"`+owner+`"%`, limit, offset)
	if err != nil {
		return nil, errors.NewStorageError("failed to list transactions for %s", owner, err)
	}
	defer rows.Close()

	out := make([]*model.TxRecord, 0)

	for rows.Next() {
		rec, err := scanTxRecord(rows)
		if err != nil {
			return nil, errors.NewStorageError("failed to scan transaction row", err)
		}

		out = append(out, rec)
	}

	return out, rows.Err()
}
