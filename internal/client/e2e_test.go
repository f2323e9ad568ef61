package client

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/penguingram/messenger/internal/api"
	"github.com/penguingram/messenger/internal/backendtest"
	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/notify"
	"github.com/penguingram/messenger/internal/session"
	"github.com/penguingram/messenger/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginToGlobalChannelAgainstBackend(t *testing.T) {
	backend := backendtest.New()
	kim := backend.AddUser("+79000000007", "Kim")
	backend.AddMessage(backendtest.GlobalChatID, kim, "welcome")
	srv := backend.Start(t)

	b := bus.New()
	mem := session.NewMemoryStorage()
	apiClient := api.New(api.Config{BaseURL: srv.URL, Endpoints: api.DefaultEndpoints(), Timeout: 5 * time.Second}, nil, nil)
	c := New(apiClient, session.NewStore(mem, nil), status.NewMachine(b), b, notify.New(b, 0),
		Options{GlobalChannelID: strconv.Itoa(backendtest.GlobalChatID)}, nil)
	t.Cleanup(c.Close)

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "+79001234567", "Alex"))
	c.Wait()

	stored, ok := session.NewStore(mem, nil).Load()
	require.True(t, ok)
	assert.Equal(t, "user_2", stored.Token)
	assert.Equal(t, "2", stored.User.ID)
	assert.Equal(t, "Alex", stored.User.Name)

	assert.Equal(t, 1, backend.Count(http.MethodGet, "/chats"))
	assert.Equal(t, 1, backend.Count(http.MethodGet, "/contacts"))
	assert.Equal(t, 1, backend.Count(http.MethodGet, "/messages"))

	snap := c.Snapshot()
	assert.Equal(t, "1", snap.Active)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "welcome", snap.Messages[0].Text)
	assert.False(t, snap.Messages[0].IsOwn)

	for _, r := range backend.Requests() {
		if r.Path == "/auth" {
			assert.Empty(t, r.UserIDs, "login carries no identity")
			continue
		}
		assert.Equal(t, []string{"2"}, r.UserIDs, "%s %s", r.Method, r.Path)
	}

	require.NoError(t, c.Send(ctx, "hello"))
	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Text)
	assert.True(t, msgs[1].IsOwn)
	assert.False(t, msgs[1].Pending())
	assert.Len(t, backend.Messages(backendtest.GlobalChatID), 2)

	backend.Fail("/messages", "database unavailable")
	require.Error(t, c.Send(ctx, "lost"))
	assert.Equal(t, "lost", c.Messages()[2].Text)
	assert.True(t, c.Messages()[2].Pending())
}
