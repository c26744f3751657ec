// Package memory is an in-memory utxo store used in tests and single-node
// deployments. All state lives behind one mutex.
package memory

import (
	"context"
	"net/http"
	"sync"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
)

var _ utxo.Store = &Memory{}

type Memory struct {
	logger   ulogger.Logger
	mu       sync.Mutex
	utxos    map[string]*utxo.UTXO
	txs      map[string]*model.TxRecord
	txOrder  []string
	reserves utxo.ReserveState
}

func New(logger ulogger.Logger) *Memory {
	return &Memory{
		logger:  logger,
		utxos:   make(map[string]*utxo.UTXO),
		txs:     make(map[string]*model.TxRecord),
		txOrder: make([]string, 0),
	}
}

func (m *Memory) Health(_ context.Context, _ bool) (int, string, error) {
	return http.StatusOK, "Memory Store available", nil
}

func (m *Memory) Create(_ context.Context, u *utxo.UTXO) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.utxos[u.ID]; ok {
		return errors.NewStorageError("utxo %s already exists", u.ID)
	}

	cloned := *u
	if cloned.Status == "" {
		cloned.Status = utxo.StatusActive
	}

	m.utxos[u.ID] = &cloned

	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*utxo.UTXO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.utxos[id]
	if !ok {
		return nil, errors.NewUtxoNotFoundError("utxo %s not found", id)
	}

	cloned := *u

	return &cloned, nil
}

func (m *Memory) GetByOwner(_ context.Context, owner string) ([]*utxo.UTXO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*utxo.UTXO, 0)

	for _, u := range m.utxos {
		if u.Owner == owner && !u.Status.Terminal() {
			cloned := *u
			out = append(out, &cloned)
		}
	}

	return out, nil
}

func (m *Memory) Spend(ctx context.Context, spends []*utxo.Spend) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// check first so a failure leaves nothing spent
	for _, spend := range spends {
		u, ok := m.utxos[spend.UtxoID]
		if !ok {
			return errors.NewUtxoNotFoundError("utxo %s not found", spend.UtxoID)
		}

		if u.Status == utxo.StatusSpent {
			return errors.NewUtxoSpentErr(u.ID, u.SpendingTxID, spend.SpendingTime, nil)
		}

		if _, err := utxo.Transition(ctx, u.Status, utxo.EventSpend); err != nil {
			return err
		}
	}

	for _, spend := range spends {
		u := m.utxos[spend.UtxoID]
		u.Status = utxo.StatusSpent
		u.SpendingTxID = spend.SpendingTxID
	}

	return nil
}

func (m *Memory) UnSpend(_ context.Context, spends []*utxo.Spend) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, spend := range spends {
		u, ok := m.utxos[spend.UtxoID]
		if !ok {
			return errors.NewUtxoNotFoundError("utxo %s not found", spend.UtxoID)
		}

		if u.Status != utxo.StatusSpent || u.SpendingTxID != spend.SpendingTxID {
			continue
		}

		u.Status = utxo.StatusActive
		u.SpendingTxID = ""
	}

	return nil
}

func (m *Memory) Freeze(ctx context.Context, id string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.utxos[id]
	if !ok {
		return errors.NewUtxoNotFoundError("utxo %s not found", id)
	}

	next, err := utxo.Transition(ctx, u.Status, utxo.EventFreeze)
	if err != nil {
		return err
	}

	u.Status = next
	u.FreezeReason = reason

	return nil
}

func (m *Memory) UnFreeze(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.utxos[id]
	if !ok {
		return errors.NewUtxoNotFoundError("utxo %s not found", id)
	}

	next, err := utxo.Transition(ctx, u.Status, utxo.EventUnfreeze)
	if err != nil {
		return err
	}

	u.Status = next
	u.FreezeReason = ""

	return nil
}

func (m *Memory) Seize(ctx context.Context, id string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.utxos[id]
	if !ok {
		return errors.NewUtxoNotFoundError("utxo %s not found", id)
	}

	next, err := utxo.Transition(ctx, u.Status, utxo.EventSeize)
	if err != nil {
		return err
	}

	u.Status = next
	u.SeizeReason = reason

	return nil
}

func (m *Memory) Scan(_ context.Context, fn func(u *utxo.UTXO) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.utxos {
		cloned := *u

		if err := fn(&cloned); err != nil {
			return err
		}
	}

	return nil
}

func (m *Memory) TotalSupply(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total uint64

	for _, u := range m.utxos {
		if u.Status.CountsTowardSupply() {
			total += u.Amount
		}
	}

	return total, nil
}

func (m *Memory) VerifiedReserves(_ context.Context) (*utxo.ReserveState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.reserves

	return &state, nil
}

func (m *Memory) SetVerifiedReserves(_ context.Context, state *utxo.ReserveState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reserves = *state

	return nil
}

func (m *Memory) SaveTransaction(_ context.Context, rec *model.TxRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.txs[rec.TxID]; ok {
		return errors.NewTxAlreadyExistsError("%s already exists", rec.TxID)
	}

	cloned := *rec
	m.txs[rec.TxID] = &cloned
	m.txOrder = append(m.txOrder, rec.TxID)

	return nil
}

func (m *Memory) GetTransaction(_ context.Context, txID string) (*model.TxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.txs[txID]
	if !ok {
		return nil, errors.NewTxNotFoundError("%s not found", txID)
	}

	cloned := *rec

	return &cloned, nil
}

func (m *Memory) ListTransactionsByOwner(_ context.Context, owner string, limit, offset int) ([]*model.TxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*model.TxRecord, 0)

	// newest first
	for i := len(m.txOrder) - 1; i >= 0; i-- {
		rec := m.txs[m.txOrder[i]]

		for _, o := range rec.Owners {
			if o == owner {
				cloned := *rec
				matched = append(matched, &cloned)

				break
			}
		}
	}

	if offset >= len(matched) {
		return []*model.TxRecord{}, nil
	}

	matched = matched[offset:]

	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	return matched, nil
}
