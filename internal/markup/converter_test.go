package markup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvert_Heading_GetsIDAndTag(t *testing.T) {
	out, err := New().Convert(context.Background(), []byte("# Hi"))
	require.NoError(t, err)
	require.Contains(t, string(out), `<h1 id="hi">Hi</h1>`)
}

func TestConvert_GFMStrikethrough_Rendered(t *testing.T) {
	out, err := New().Convert(context.Background(), []byte("~~gone~~"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<del>gone</del>")
}

func TestConvert_RawHTML_PassedThrough(t *testing.T) {
	out, err := New().Convert(context.Background(), []byte("<div class=\"x\">kept</div>"))
	require.NoError(t, err)
	require.Contains(t, string(out), `<div class="x">kept</div>`)
}

func TestConvert_CancelledContext_ReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Convert(ctx, []byte("# Hi"))
	require.Error(t, err)
}

func TestConvert_ConcurrentUse_Safe(t *testing.T) {
	c := New()
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := c.Convert(context.Background(), []byte("*em* and `code`"))
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}
