package skybins

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHours(t *testing.T) {
	_, err := NewHours(-0.01)
	assert.True(t, errors.Is(err, ErrNegative))

	h, err := HoursFromMillis(5400000)
	require.NoError(t, err)
	assert.Equal(t, 1.5, h.Value())
	assert.Equal(t, "1.50 hrs", h.String())

	two, _ := NewHours(2)
	assert.Equal(t, 3.5, h.Add(two).Value())

	_, err = HoursFromMillis(-1)
	assert.Error(t, err)
}

func TestPercent(t *testing.T) {
	_, err := NewPercent(-1)
	assert.True(t, errors.Is(err, ErrNegative))

	p, err := NewPercent(12.5)
	require.NoError(t, err)
	assert.Equal(t, "12.500%", p.String())

	over, err := NewPercent(130)
	require.NoError(t, err, "percentages above 100 are allowed")
	assert.Equal(t, 130.0, over.Value())
}

func TestValuesJSON(t *testing.T) {
	h, _ := NewHours(1.25)
	p, _ := NewPercent(100)
	b, err := json.Marshal(struct {
		H Hours   `json:"h"`
		P Percent `json:"p"`
	}{h, p})
	require.NoError(t, err)
	assert.JSONEq(t, `{"h":1.25,"p":100}`, string(b))
}
