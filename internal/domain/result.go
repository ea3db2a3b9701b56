package domain

import "encoding/json"

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is the uniform envelope every client-visible action resolves to.
// It mirrors the media broker's own response shape, so broker answers pass
// through unchanged.
type Result struct {
	Status  Status          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

func Ok(data any) Result {
	if data == nil {
		return Result{Status: StatusSuccess}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return Fail("unencodable payload")
	}
	return Result{Status: StatusSuccess, Data: b}
}

func OkRaw(data json.RawMessage) Result {
	return Result{Status: StatusSuccess, Data: data}
}

func Fail(message string) Result {
	return Result{Status: StatusFailed, Message: message}
}

func (r Result) OK() bool { return r.Status == StatusSuccess }
