package ws

import (
	"encoding/json"

	"github.com/velmart/chat/pkg/action"
)

// errorEvent is the error envelope pushed back to the originating session.
type errorEvent struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string             `json:"code"`
	Message string             `json:"message,omitempty"`
	Fields  []action.Violation `json:"fields,omitempty"`
}

func (s *Session) pushError(code, message string) {
	data, err := json.Marshal(errorEvent{Error: errorBody{Code: code, Message: message}})
	if err != nil {
		return
	}
	s.Push(data)
}

func (s *Session) pushValidationError(violations action.Violations) {
	data, err := json.Marshal(errorEvent{Error: errorBody{Code: "VALIDATION_ERROR", Fields: violations}})
	if err != nil {
		return
	}
	s.Push(data)
}
