package kafka

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/notify/internal/domain"
)

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	t.Run("valid payload", func(t *testing.T) {
		t.Parallel()

		original, err := domain.NewNotificationEvent(
			domain.TypeCommentAdded, uuid.New(), "New comment", "Alice commented")
		require.NoError(t, err)

		payload, err := json.Marshal(original)
		require.NoError(t, err)

		event, err := DecodeEvent(payload)
		require.NoError(t, err)
		assert.Equal(t, original.ID, event.ID)
		assert.Equal(t, original.ProjectID, event.ProjectID)
		assert.Equal(t, domain.TypeCommentAdded, event.Type)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()

		_, err := DecodeEvent([]byte("{not json"))
		assert.ErrorContains(t, err, "failed to unmarshal")
	})

	t.Run("valid JSON failing domain validation", func(t *testing.T) {
		t.Parallel()

		payload := []byte(`{"type":"task_created","title":"x","message":"y"}`)
		_, err := DecodeEvent(payload)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
