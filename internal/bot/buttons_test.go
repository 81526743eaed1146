package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shoplist/internal/product"
	"github.com/roach88/shoplist/internal/store"
)

func TestEncodeID(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		input  product.Name
		want   string
	}{
		{"done has no payload", ActionDone, "milk", "done"},
		{"cancel has no payload", ActionCancel, "", "cancel"},
		{"add similar", ActionAddSimilar, "milk", "add_similar:milk"},
		{"force add", ActionForceAdd, "oat milk", "force_add:oat milk"},
		{"pick", ActionPick, "хліб", "pick:хліб"},
		{"inline", ActionInline, "milk", "inline:milk"},
		{"new", ActionNew, "milk", "new:milk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeID(tt.action, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeID_NeverExceedsLimit(t *testing.T) {
	names := []product.Name{
		product.Name(strings.Repeat("a", 200)),
		product.Name(strings.Repeat("ж", 100)),
		product.Name(strings.Repeat("🍎", 40)),
		"x",
	}
	for _, a := range []Action{ActionAddSimilar, ActionForceAdd, ActionPick, ActionInline, ActionNew} {
		for _, n := range names {
			id, err := EncodeID(a, n)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(id), store.MaxTransportBytes, "id %q", id)
			assert.True(t, strings.HasPrefix(id, string(a)+":"))
		}
	}
}

func TestDecodeID(t *testing.T) {
	tests := []struct {
		raw  string
		want ID
		ok   bool
	}{
		{"done", ID{Action: ActionDone}, true},
		{"cancel", ID{Action: ActionCancel}, true},
		{"add_similar:milk", ID{Action: ActionAddSimilar, Payload: "milk"}, true},
		{"pick:a:b", ID{Action: ActionPick, Payload: "a:b"}, true},
		{"new:хліб", ID{Action: ActionNew, Payload: "хліб"}, true},
		{"pick:", ID{}, false},
		{"done:milk", ID{}, false},
		{"force_add", ID{}, false},
		{"bogus:milk", ID{}, false},
		{"", ID{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := DecodeID(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestID_Resolve(t *testing.T) {
	long := product.Name(strings.Repeat("ж", 40))
	longID, err := EncodeID(ActionAddSimilar, long)
	require.NoError(t, err)

	id, ok := DecodeID(longID)
	require.True(t, ok)

	t.Run("truncated payload resolves to candidate", func(t *testing.T) {
		assert.Equal(t, long, id.Resolve([]product.Name{"milk", long}))
	})

	t.Run("first candidate set wins", func(t *testing.T) {
		other := product.Name(strings.Repeat("ж", 39) + "а")
		assert.Equal(t, other, id.Resolve([]product.Name{other}, []product.Name{long}))
	})

	t.Run("falls back to payload", func(t *testing.T) {
		assert.Equal(t, product.Name(strings.Repeat("ж", 26)), id.Resolve(nil))
	})

	t.Run("short names round trip", func(t *testing.T) {
		id, ok := DecodeID("pick:milk")
		require.True(t, ok)
		assert.Equal(t, product.Name("milk"), id.Resolve())
	})
}
