package log

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"DEBUG":    LevelDebug,
		"debug":    LevelDebug,
		" Info ":   LevelInfo,
		"warning":  LevelWarning,
		"WARN":     LevelWarning,
		"Error":    LevelError,
		"critical": LevelCritical,
		"fatal":    LevelCritical,
		"notset":   LevelNotSet,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "verbose", "15", "TRACE"} {
		_, err := ParseLevel(in)
		assert.ErrorIs(t, err, ErrInvalidLevel, in)
	}
}

func TestLevelOrdering(t *testing.T) {
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		assert.Less(t, levels[i-1], levels[i])
		assert.Less(t, levels[i-1].Slog(), levels[i].Slog())
	}
}

func TestLevelSlogMapping(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.Slog())
	assert.Equal(t, slog.LevelInfo, LevelInfo.Slog())
	assert.Equal(t, slog.LevelWarn, LevelWarning.Slog())
	assert.Equal(t, slog.LevelError, LevelError.Slog())
	for _, l := range Levels() {
		assert.Equal(t, l, FromSlog(l.Slog()), l.String())
	}
}

func TestLevelYAML(t *testing.T) {
	var doc struct {
		Level Level `yaml:"level"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("level: warn\n"), &doc))
	assert.Equal(t, LevelWarning, doc.Level)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "level: WARNING\n", string(out))

	err = yaml.Unmarshal([]byte("level: loud\n"), &doc)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
