package errors

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// CooldownErrData carries the retry-after timestamp for a rate-limited
// governance action so callers know when the action becomes admissible.
type CooldownErrData struct {
	Target     string    `json:"target"`
	ActionType string    `json:"action_type"`
	RetryAfter time.Time `json:"retry_after"`
}

func (e *CooldownErrData) Error() string {
	return fmt.Sprintf("%s on %s in cooldown until %s", e.ActionType, e.Target, e.RetryAfter.UTC().Format(time.RFC3339))
}

func (e *CooldownErrData) EncodeErrorData() []byte {
	data, err := jsoniter.Marshal(e)
	if err != nil {
		return []byte{}
	}

	return data
}

func (e *CooldownErrData) GetData(key string) interface{} {
	switch key {
	case "target":
		return e.Target
	case "action_type":
		return e.ActionType
	case "retry_after":
		return e.RetryAfter
	default:
		return nil
	}
}

func (e *CooldownErrData) SetData(_ string, _ interface{}) {}

func NewCooldownActiveErr(target, actionType string, retryAfter time.Time) error {
	cooldownErrStruct := &CooldownErrData{
		Target:     target,
		ActionType: actionType,
		RetryAfter: retryAfter,
	}

	e := New(ERR_COOLDOWN_ACTIVE, cooldownErrStruct.Error())
	e.data = cooldownErrStruct

	return e
}
