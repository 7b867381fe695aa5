package stringsx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClip_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"equal", "hello", 5, "hello"},
		{"clip", "hello", 3, "hel"},
		{"zero", "hello", 0, ""},
		{"neg", "hello", -1, ""},
		{"empty", "", 3, ""},
		{"runes", "héllo wörld", 7, "héllo w"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Clip(tt.in, tt.max))
		})
	}
}

func TestEllipsize(t *testing.T) {
	got, cut := Ellipsize("Meeting notes for the quarterly review", 30)
	require.True(t, cut)
	require.Equal(t, "Meeting notes for the quarterl...", got)

	got, cut = Ellipsize("Short", 30)
	require.False(t, cut)
	require.Equal(t, "Short", got)
}

func TestNormalize_ContainsFold_And_IsEmpty(t *testing.T) {
	require.Equal(t, "hello", Normalize("  HeLLo  "))
	require.True(t, ContainsFold("say hello", "HELLO"))
	require.False(t, ContainsFold("say hello", "bye"))
	require.True(t, IsEmpty("   \n\t  "))
	require.False(t, IsEmpty(" x "))
}
