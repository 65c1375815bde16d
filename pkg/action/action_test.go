package action

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/velmart/chat/internal/domain"
)

func TestParse_Send(t *testing.T) {
	req := require.New(t)
	recipient := uuid.New()

	act, err := Parse(fmt.Appendf(nil, `{"action":"send","recipient_id":%q,"content":"hello"}`, recipient))
	req.NoError(err)

	send, ok := act.(Send)
	req.True(ok)
	req.Equal(recipient, send.RecipientID)
	req.Equal("hello", send.Content)
}

func TestParse_Edit(t *testing.T) {
	req := require.New(t)
	messageID := uuid.New()

	act, err := Parse(fmt.Appendf(nil, `{"action":"edit","message_id":%q,"content":"updated"}`, messageID))
	req.NoError(err)

	edit, ok := act.(Edit)
	req.True(ok)
	req.Equal(messageID, edit.MessageID)
	req.Equal("updated", edit.Content)
}

func TestParse_Delete(t *testing.T) {
	req := require.New(t)
	messageID := uuid.New()

	act, err := Parse(fmt.Appendf(nil, `{"action":"delete","message_id":%q}`, messageID))
	req.NoError(err)

	del, ok := act.(Delete)
	req.True(ok)
	req.Equal(messageID, del.MessageID)
}

func TestParse_UnknownAction(t *testing.T) {
	req := require.New(t)

	for _, payload := range []string{
		`{"action":"broadcast"}`,
		`{"content":"hello"}`,
		`{"action":42}`,
	} {
		act, err := Parse([]byte(payload))
		req.Nil(act, payload)

		var violations Violations
		req.ErrorAs(err, &violations, payload)
		req.Len(violations, 1)
		req.Equal("action", violations[0].Field)
	}
}

func TestParse_CollectsAllViolations(t *testing.T) {
	req := require.New(t)

	// send with no recipient, no content, and a typo'd extra field
	act, err := Parse([]byte(`{"action":"send","recipent_id":"x"}`))
	req.Nil(act)

	var violations Violations
	req.ErrorAs(err, &violations)
	req.Len(violations, 3)

	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	req.ElementsMatch([]string{"recipent_id", "content", "recipient_id"}, fields)
}

func TestParse_UnexpectedField(t *testing.T) {
	req := require.New(t)

	// delete does not take content
	_, err := Parse(fmt.Appendf(nil, `{"action":"delete","message_id":%q,"content":"x"}`, uuid.New()))

	var violations Violations
	req.ErrorAs(err, &violations)
	req.Len(violations, 1)
	req.Equal("content", violations[0].Field)
}

func TestParse_InvalidUUID(t *testing.T) {
	req := require.New(t)

	_, err := Parse([]byte(`{"action":"edit","message_id":"not-a-uuid","content":"x"}`))

	var violations Violations
	req.ErrorAs(err, &violations)
	req.Len(violations, 1)
	req.Equal("message_id", violations[0].Field)
	req.Contains(violations[0].Message, "valid UUID")
}

func TestParse_ContentTooLong(t *testing.T) {
	req := require.New(t)
	long := strings.Repeat("a", domain.MaxContentLen+1)

	_, err := Parse(fmt.Appendf(nil, `{"action":"send","recipient_id":%q,"content":%q}`, uuid.New(), long))

	var violations Violations
	req.ErrorAs(err, &violations)
	req.Len(violations, 1)
	req.Equal("content", violations[0].Field)

	// exactly at the bound is fine
	_, err = Parse(fmt.Appendf(nil, `{"action":"send","recipient_id":%q,"content":%q}`, uuid.New(), long[1:]))
	req.NoError(err)
}

func TestParse_MalformedJSON(t *testing.T) {
	req := require.New(t)

	_, err := Parse([]byte(`{"action":`))

	var violations Violations
	req.ErrorAs(err, &violations)
	req.Equal("payload", violations[0].Field)
}
