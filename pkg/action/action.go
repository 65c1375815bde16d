// Package action parses inbound chat action payloads into a closed set of
// validated variants. The schema is strict: unknown actions, missing required
// fields and unrecognized fields are all rejected, and every violation in a
// payload is reported in one pass.
package action

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/velmart/chat/internal/domain"
)

// Action is one of Send, Edit or Delete.
type Action interface {
	isAction()
}

type Send struct {
	RecipientID uuid.UUID
	Content     string
}

type Edit struct {
	MessageID uuid.UUID
	Content   string
}

type Delete struct {
	MessageID uuid.UUID
}

func (Send) isAction()   {}
func (Edit) isAction()   {}
func (Delete) isAction() {}

// Violation describes a single schema failure at a field path.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is the error type returned for any invalid payload.
type Violations []Violation

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, viol := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", viol.Field, viol.Message))
	}
	return strings.Join(parts, " | ")
}

// allowedFields lists the recognized keys per action, discriminator included.
var allowedFields = map[string]map[string]bool{
	"send":   {"action": true, "recipient_id": true, "content": true},
	"edit":   {"action": true, "message_id": true, "content": true},
	"delete": {"action": true, "message_id": true},
}

// Parse validates raw payload bytes into an Action. On failure it returns a
// Violations error listing every problem found.
func Parse(data []byte) (Action, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Violations{{Field: "payload", Message: "invalid JSON object"}}
	}

	var name string
	if rawAction, ok := raw["action"]; !ok || json.Unmarshal(rawAction, &name) != nil {
		return nil, Violations{{Field: "action", Message: "a send, edit or delete action is required"}}
	}

	allowed, ok := allowedFields[name]
	if !ok {
		return nil, Violations{{Field: "action", Message: "invalid action type, it can take values: send, edit, delete"}}
	}

	var violations Violations

	extra := make([]string, 0, len(raw))
	for key := range raw {
		if !allowed[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		violations = append(violations, Violation{Field: key, Message: "unexpected field for action " + name})
	}

	content, ok := stringField(raw, "content")
	if allowed["content"] {
		if !ok || content == "" {
			violations = append(violations, Violation{Field: "content", Message: "the content field is required for this action"})
		} else if utf8.RuneCountInString(content) > domain.MaxContentLen {
			violations = append(violations, Violation{Field: "content", Message: fmt.Sprintf("content must be at most %d characters", domain.MaxContentLen)})
		}
	}

	var recipientID, messageID uuid.UUID
	if allowed["recipient_id"] {
		recipientID = uuidField(raw, "recipient_id", &violations)
		if recipientID == uuid.Nil && !hasViolation(violations, "recipient_id") {
			violations = append(violations, Violation{Field: "recipient_id", Message: "the recipient_id field is required for sending"})
		}
	}
	if allowed["message_id"] {
		messageID = uuidField(raw, "message_id", &violations)
		if messageID == uuid.Nil && !hasViolation(violations, "message_id") {
			violations = append(violations, Violation{Field: "message_id", Message: "the message_id field is required for this action"})
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}

	switch name {
	case "send":
		return Send{RecipientID: recipientID, Content: content}, nil
	case "edit":
		return Edit{MessageID: messageID, Content: content}, nil
	default:
		return Delete{MessageID: messageID}, nil
	}
}

func stringField(raw map[string]json.RawMessage, key string) (string, bool) {
	data, ok := raw[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, true
}

func uuidField(raw map[string]json.RawMessage, key string, violations *Violations) uuid.UUID {
	data, ok := raw[key]
	if !ok {
		return uuid.Nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*violations = append(*violations, Violation{Field: key, Message: "must be a string UUID"})
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		*violations = append(*violations, Violation{Field: key, Message: "must be a valid UUID"})
		return uuid.Nil
	}
	return id
}

func hasViolation(violations Violations, field string) bool {
	for _, v := range violations {
		if v.Field == field {
			return true
		}
	}
	return false
}
