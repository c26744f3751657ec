package errors

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// UtxoSpentErrData identifies the transaction that already consumed a utxo.
type UtxoSpentErrData struct {
	UtxoID       string    `json:"utxo_id"`
	SpendingTxID string    `json:"spending_tx_id"`
	Time         time.Time `json:"time"`
}

func (e *UtxoSpentErrData) Error() string {
	return fmt.Sprintf("utxo %s already spent by %s at %s", e.UtxoID, e.SpendingTxID, e.Time)
}

func (e *UtxoSpentErrData) EncodeErrorData() []byte {
	data, err := jsoniter.Marshal(e)
	if err != nil {
		return []byte{}
	}

	return data
}

func (e *UtxoSpentErrData) GetData(key string) interface{} {
	switch key {
	case "utxo_id":
		return e.UtxoID
	case "spending_tx_id":
		return e.SpendingTxID
	case "time":
		return e.Time
	default:
		return nil
	}
}

func (e *UtxoSpentErrData) SetData(_ string, _ interface{}) {}

func NewUtxoSpentErr(utxoID string, spendingTxID string, t time.Time, err error) error {
	utxoSpentErrStruct := &UtxoSpentErrData{
		UtxoID:       utxoID,
		SpendingTxID: spendingTxID,
		Time:         t,
	}

	e := New(ERR_UTXO_SPENT, utxoSpentErrStruct.Error(), err)
	e.data = utxoSpentErrStruct

	return e
}
