package transport

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	testCases := []struct {
		name    string
		guard   Guard
		in      float64
		want    float64
		wantErr bool
	}{
		{"slack tolerated", Guard{Check: true}, 1.0005, 1.0005, false},
		{"slack tolerated below", Guard{Check: true}, -0.0009, -0.0009, false},
		{"excursion fails", Guard{Check: true}, 1.01, 1.01, true},
		{"excursion clamped", Guard{Check: true, Clamp: true}, 1.01, 1.0, false},
		{"negative clamped", Guard{Check: true, Clamp: true}, -0.5, 0.0, false},
		{"in range untouched", Guard{Check: true, Clamp: true}, 0.4, 0.4, false},
		{"check disabled", Guard{Check: false}, 7, 7, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := []float64{0.5, tc.in}
			err := tc.guard.CheckAndClamp(s)
			assert.Equal(t, tc.want, s[1])
			assert.Equal(t, 0.5, s[0])
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfRange))
			var re *RangeError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, 1, re.Cell)
			assert.Equal(t, tc.in, re.Value)
			assert.Contains(t, err.Error(), "cell 1")
		})
	}
}

func TestGuardNaN(t *testing.T) {
	err := Guard{Check: true, Clamp: true}.CheckAndClamp([]float64{math.NaN()})
	assert.True(t, errors.Is(err, ErrOutOfRange))
}
