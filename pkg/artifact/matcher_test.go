package artifact

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatcher(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid single include",
			cfg:  Config{Includes: []string{"fire_*"}},
		},
		{
			name: "valid with excludes",
			cfg:  Config{Includes: []string{"fire_*"}, Excludes: []string{"fire_0*"}},
		},
		{
			name:    "no includes",
			cfg:     Config{},
			wantErr: ErrNoIncludes,
		},
		{
			name:    "invalid include",
			cfg:     Config{Includes: []string{"fire_[*"}},
			wantErr: ErrInvalidPattern,
		},
		{
			name:    "invalid exclude",
			cfg:     Config{Includes: []string{"fire_*"}, Excludes: []string{"bad_["}},
			wantErr: ErrInvalidPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	m, err := NewMatcher(Config{
		Includes: []string{"fire_*", "firespread.ros.*"},
		Excludes: []string{"fire_08"},
	})
	require.NoError(t, err)

	assert.True(t, m.Match("fire_02"))
	assert.True(t, m.Match("firespread.ros.max"))
	assert.False(t, m.Match("fire_08"), "excluded")
	assert.False(t, m.Match("elevation"), "no include matches")
}

func TestPatternError(t *testing.T) {
	_, err := NewMatcher(Config{Includes: []string{"fire_["}})
	require.Error(t, err)

	var pe *PatternError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "fire_[", pe.Pattern)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}
