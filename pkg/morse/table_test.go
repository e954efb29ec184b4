package morse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	// 26 letters, 10 digits, 7 punctuation marks, newline and space
	assert.Equal(t, 45, table.Len())

	t.Run("Forward lookup", func(t *testing.T) {
		code, ok := table.CodeOf('S')
		require.True(t, ok)
		assert.Equal(t, "...", code)

		code, ok = table.CodeOf(' ')
		require.True(t, ok)
		assert.Equal(t, "/", code)

		code, ok = table.CodeOf('\n')
		require.True(t, ok)
		assert.Equal(t, "\n", code)

		_, ok = table.CodeOf('s')
		assert.False(t, ok, "lookups expect uppercase input")
	})

	t.Run("Inverse lookup", func(t *testing.T) {
		c, ok := table.CharOf("---")
		require.True(t, ok)
		assert.Equal(t, 'O', c)

		c, ok = table.CharOf("-..-.")
		require.True(t, ok)
		assert.Equal(t, '/', c)

		_, ok = table.CharOf("........")
		assert.False(t, ok)
	})

	t.Run("Inverse is exact", func(t *testing.T) {
		for _, c := range table.Chars() {
			code, ok := table.CodeOf(c)
			require.True(t, ok)
			back, ok := table.CharOf(code)
			require.True(t, ok)
			assert.Equal(t, c, back, "code %q", code)
		}
	})
}

func TestNewSymbolTable(t *testing.T) {
	t.Run("Collision fails", func(t *testing.T) {
		_, err := NewSymbolTable([]Entry{{'A', ".-"}, {'B', "-..."}, {'Ä', ".-"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCodeCollision)
		assert.Contains(t, err.Error(), `'A'`)
		assert.Contains(t, err.Error(), `'Ä'`)
	})

	t.Run("Duplicate character fails", func(t *testing.T) {
		_, err := NewSymbolTable([]Entry{{'A', ".-"}, {'A', "-"}})
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("Empty code fails", func(t *testing.T) {
		_, err := NewSymbolTable([]Entry{{'A', ""}})
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("Must panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustNewSymbolTable([]Entry{{'A', "."}, {'E', "."}})
		})
	})

	t.Run("Default entries are valid", func(t *testing.T) {
		_, err := NewSymbolTable(LatinEntries)
		assert.NoError(t, err)
	})
}

func TestDurationUnits(t *testing.T) {
	tests := []struct {
		sym  rune
		want int
	}{
		{'.', 1},
		{'-', 3},
		{' ', 3},
		{'/', 1},
		{'\n', 10},
		{'_', 0},
		{'x', 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DurationUnits(tt.sym), "symbol %q", tt.sym)
	}
}

func TestNewDurationTableCopies(t *testing.T) {
	units := map[rune]int{'.': 1}
	table := NewDurationTable(units)
	units['.'] = 7

	assert.Equal(t, 1, table.Units('.'))
}

func TestIsTone(t *testing.T) {
	assert.True(t, IsTone('.'))
	assert.True(t, IsTone('-'))
	assert.False(t, IsTone(' '))
	assert.False(t, IsTone('/'))
	assert.False(t, IsTone('\n'))
}
