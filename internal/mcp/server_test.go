package mcp

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/pkg/config"
)

func TestNewServer(t *testing.T) {
	t.Run("requires an app", func(t *testing.T) {
		_, err := NewServer(nil, "dev")
		assert.Error(t, err)
	})

	t.Run("registers the nudge tools", func(t *testing.T) {
		srv, err := NewServer(&cli.App{}, "dev")
		require.NoError(t, err)

		tc := testutil.NewTestClient(t, srv)
		defer tc.Close()

		tools, err := tc.ListTools()
		require.NoError(t, err)

		var names []any
		for _, tool := range tools {
			names = append(names, tool["name"])
		}
		assert.Contains(t, names, "focus.rank")
	})
}

func TestMiddlewareStack(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("adds auth in front when a token is set", func(t *testing.T) {
		open := middlewareStack(&config.Config{}, discard)
		guarded := middlewareStack(&config.Config{MCPAuthToken: "secret", UserID: "u1"}, discard)

		assert.Len(t, guarded, len(open)+1)
	})

	t.Run("warns when the server is open", func(t *testing.T) {
		var buf bytes.Buffer
		middlewareStack(&config.Config{}, slog.New(slog.NewTextHandler(&buf, nil)))

		assert.Contains(t, buf.String(), "unauthenticated")
	})
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	log := slogAdapter{slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	log.Warn("request rejected", middleware.Field{Key: "method", Value: "tools/call"})

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "method=tools/call")
}
