package api

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/notify/internal/api/shared"
	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/push"
	"github.com/taskflow/notify/internal/registry"
)

// streamServer serves the SSE endpoint with the given user pre-authenticated.
func streamServer(t *testing.T, h *StreamHandler, userID uuid.UUID) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Stream(w, r.WithContext(shared.WithUserID(r.Context(), userID)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// readDataFrame reads lines until a complete SSE data frame arrives, skipping
// comment lines. Returns the frame payload.
func readDataFrame(t *testing.T, reader *bufio.Reader) string {
	t.Helper()

	var payload string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case strings.HasPrefix(line, ":"):
			continue
		case strings.HasPrefix(line, "data: "):
			payload = strings.TrimPrefix(line, "data: ")
		case line == "" && payload != "":
			return payload
		}
	}
}

func TestStreamHandler_Stream(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication context", func(t *testing.T) {
		t.Parallel()

		handler := NewStreamHandler(registry.New(4), testLogger())

		rr := httptest.NewRecorder()
		handler.Stream(rr, httptest.NewRequest(http.MethodGet, "/notifications/stream", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("sends handshake then delivers enqueued frames", func(t *testing.T) {
		t.Parallel()

		reg := registry.New(4)
		handler := NewStreamHandler(reg, testLogger())
		userID := uuid.New()
		srv := streamServer(t, handler, userID)

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

		reader := bufio.NewReader(resp.Body)

		var handshake push.Frame
		require.NoError(t, json.Unmarshal([]byte(readDataFrame(t, reader)), &handshake))
		assert.Equal(t, "connected", handshake.Type)

		conn, ok := reg.Lookup(userID)
		require.True(t, ok, "connection must be registered once the handshake arrived")

		n := &domain.Notification{
			ID:      uuid.New(),
			UserID:  userID,
			Title:   "Task assigned",
			Message: "You were assigned to Deploy staging",
			Type:    domain.TypeTaskAssigned,
		}
		frame, err := json.Marshal(push.NotificationFrame(n))
		require.NoError(t, err)
		require.NoError(t, conn.Enqueue(frame))

		var got push.Frame
		require.NoError(t, json.Unmarshal([]byte(readDataFrame(t, reader)), &got))
		assert.Equal(t, "notification", got.Type)
		require.NotNil(t, got.Data)
		assert.Equal(t, n.ID.String(), got.Data.ID)
		assert.Equal(t, "Task assigned", got.Data.Title)
	})

	t.Run("emits heartbeat comments", func(t *testing.T) {
		t.Parallel()

		reg := registry.New(4)
		handler := NewStreamHandler(reg, testLogger())
		handler.heartbeat = 20 * time.Millisecond
		userID := uuid.New()
		srv := streamServer(t, handler, userID)

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)
		readDataFrame(t, reader)

		deadline := time.After(2 * time.Second)
		for {
			select {
			case <-deadline:
				t.Fatal("no heartbeat arrived")
			default:
			}

			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, ": ping") {
				return
			}
		}
	})

	t.Run("newer connection evicts the stream", func(t *testing.T) {
		t.Parallel()

		reg := registry.New(4)
		handler := NewStreamHandler(reg, testLogger())
		userID := uuid.New()
		srv := streamServer(t, handler, userID)

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)
		readDataFrame(t, reader)

		// Same user connects again; the old handler must terminate.
		reg.Register(userID)

		_, err = io.ReadAll(resp.Body)
		assert.NoError(t, err, "stream should end cleanly after eviction")
	})

	t.Run("unregisters on client disconnect", func(t *testing.T) {
		t.Parallel()

		reg := registry.New(4)
		handler := NewStreamHandler(reg, testLogger())
		userID := uuid.New()
		srv := streamServer(t, handler, userID)

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)

		reader := bufio.NewReader(resp.Body)
		readDataFrame(t, reader)
		require.Equal(t, 1, reg.Len())

		resp.Body.Close()

		require.Eventually(t, func() bool {
			return reg.Len() == 0
		}, 2*time.Second, 10*time.Millisecond)
	})
}
