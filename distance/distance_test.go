package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
		{"Unrolled", []float32{1, 1, 1, 1, 1, 1, 1}, []float32{1, 2, 3, 4, 5, 6, 7}, 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-5)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 27},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 8},
		{"Unrolled", []float32{0, 0, 0, 0, 0}, []float32{1, 1, 1, 1, 2}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SquaredL2(tt.a, tt.b), 1e-5)
		})
	}
}

func TestParseMetric(t *testing.T) {
	for _, name := range []string{"L2", "l2", "squared_l2", "euclidean"} {
		m, err := ParseMetric(name)
		require.NoError(t, err)
		assert.Equal(t, MetricL2, m)
	}
	for _, name := range []string{"IP", "ip", "inner_product", "dot"} {
		m, err := ParseMetric(name)
		require.NoError(t, err)
		assert.Equal(t, MetricIP, m)
	}

	_, err := ParseMetric("cosine")
	assert.ErrorIs(t, err, ErrUnsupportedMetric)
}

func TestMetricOrdering(t *testing.T) {
	assert.True(t, MetricL2.Better(1, 2))
	assert.False(t, MetricL2.Better(2, 1))
	assert.True(t, MetricIP.Better(2, 1))
	assert.False(t, MetricIP.Better(1, 1))
}

func TestMetricText(t *testing.T) {
	b, err := MetricIP.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "IP", string(b))

	var m Metric
	require.NoError(t, m.UnmarshalText([]byte("L2")))
	assert.Equal(t, MetricL2, m)

	_, err = Metric(42).MarshalText()
	assert.Error(t, err)
}

func TestProvider(t *testing.T) {
	fn, err := Provider(MetricL2)
	require.NoError(t, err)
	assert.InDelta(t, float32(27), fn([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-5)

	_, err = Provider(Metric(7))
	assert.Error(t, err)
}
