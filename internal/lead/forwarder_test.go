package lead

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codefarman/chatGPT-Widget/internal/types"
)

type capturedHook struct {
	calls    int
	body     map[string]any
	rawQuery string
	status   int
	respond  string
}

func newHook(status int, respond string) (*capturedHook, *httptest.Server) {
	h := &capturedHook{status: status, respond: respond}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.calls++
		h.rawQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &h.body)
		w.WriteHeader(h.status)
		_, _ = w.Write([]byte(h.respond))
	}))
	return h, srv
}

func TestForward_NormalizesPhoneToDigits(t *testing.T) {
	hook, srv := newHook(http.StatusOK, `{"id": "abc"}`)
	defer srv.Close()

	f := NewForwarder(srv.URL, "")
	upstream, err := f.Forward(context.Background(), types.LeadRequest{
		Name:  "Priya",
		Phone: "+91 98765-43210",
	})
	require.NoError(t, err)
	require.Equal(t, 1, hook.calls)
	require.Equal(t, "919876543210", hook.body["phone"])
	require.Equal(t, "Priya", hook.body["name"])
	require.Equal(t, map[string]any{"id": "abc"}, upstream)
}

func TestForward_DefaultsAndDeliveryID(t *testing.T) {
	hook, srv := newHook(http.StatusOK, "")
	defer srv.Close()

	f := NewForwarder(srv.URL, "")
	f.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	upstream, err := f.Forward(context.Background(), types.LeadRequest{Name: "Bo", Phone: "123"})
	require.NoError(t, err)
	require.Nil(t, upstream)
	require.Equal(t, "", hook.body["firstMessage"])
	require.Equal(t, []any{}, hook.body["conversation"])
	require.Equal(t, "2025-03-01T12:00:00Z", hook.body["timestamp"])
	require.NotEmpty(t, hook.body["deliveryId"])
}

func TestForward_KeepsCallerTimestampAndConversation(t *testing.T) {
	hook, srv := newHook(http.StatusOK, "")
	defer srv.Close()

	f := NewForwarder(srv.URL, "")
	_, err := f.Forward(context.Background(), types.LeadRequest{
		Name:      "Bo",
		Phone:     "123",
		Timestamp: "2024-11-05T09:30:00Z",
		Conversation: []types.ChatTurn{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "2024-11-05T09:30:00Z", hook.body["timestamp"])
	require.Len(t, hook.body["conversation"], 2)
}

func TestForward_TokenAppendedPreservingQuery(t *testing.T) {
	hook, srv := newHook(http.StatusOK, "")
	defer srv.Close()

	f := NewForwarder(srv.URL+"/intake?source=widget", "s3cret")
	_, err := f.Forward(context.Background(), types.LeadRequest{Name: "Bo", Phone: "123"})
	require.NoError(t, err)
	require.Contains(t, hook.rawQuery, "source=widget")
	require.Contains(t, hook.rawQuery, "token=s3cret")
}

func TestForward_MissingFields(t *testing.T) {
	hook, srv := newHook(http.StatusOK, "")
	defer srv.Close()
	f := NewForwarder(srv.URL, "")

	for _, sub := range []types.LeadRequest{
		{},
		{Name: "Bo"},
		{Phone: "123"},
		{Name: "   ", Phone: "123"},
		{Name: "Bo", Phone: "ext."}, // no digits at all
	} {
		_, err := f.Forward(context.Background(), sub)
		require.ErrorIs(t, err, ErrMissingFields)
	}
	require.Zero(t, hook.calls)
}

func TestForward_NotConfigured(t *testing.T) {
	f := NewForwarder("", "whatever")
	_, err := f.Forward(context.Background(), types.LeadRequest{Name: "Bo", Phone: "123"})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestForward_UpstreamFailureStatus(t *testing.T) {
	_, srv := newHook(http.StatusBadGateway, "intake down")
	defer srv.Close()

	f := NewForwarder(srv.URL, "")
	_, err := f.Forward(context.Background(), types.LeadRequest{Name: "Bo", Phone: "123"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
	require.Contains(t, err.Error(), "intake down")
}

func TestForward_NonJSONUpstreamBodyReturnedAsText(t *testing.T) {
	_, srv := newHook(http.StatusOK, "thanks")
	defer srv.Close()

	f := NewForwarder(srv.URL, "")
	upstream, err := f.Forward(context.Background(), types.LeadRequest{Name: "Bo", Phone: "123"})
	require.NoError(t, err)
	require.Equal(t, "thanks", upstream)
}

func TestForward_NoDeduplicationAcrossCalls(t *testing.T) {
	hook, srv := newHook(http.StatusOK, "")
	defer srv.Close()

	f := NewForwarder(srv.URL, "")
	sub := types.LeadRequest{Name: "Bo", Phone: "123"}
	_, err := f.Forward(context.Background(), sub)
	require.NoError(t, err)
	_, err = f.Forward(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, 2, hook.calls)
}
