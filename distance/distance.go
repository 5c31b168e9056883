package distance

import (
	"errors"
	"fmt"
	"strings"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= n; i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}
	return (s0 + s1) + (s2 + s3)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for ; i < n; i++ {
		d := a[i] - b[i]
		s0 += d * d
	}
	return (s0 + s1) + (s2 + s3)
}

// ErrUnsupportedMetric is returned for metric values or names outside the supported family.
var ErrUnsupportedMetric = errors.New("unsupported metric")

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	// MetricL2 is squared Euclidean distance. Ascending is best.
	MetricL2 Metric = iota
	// MetricIP is the inner product. Descending is best.
	MetricIP
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricIP:
		return "IP"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Valid reports whether m is a supported metric.
func (m Metric) Valid() bool {
	return m == MetricL2 || m == MetricIP
}

// HigherIsBetter reports whether larger scores rank first under m.
func (m Metric) HigherIsBetter() bool {
	return m == MetricIP
}

// Better reports whether score a ranks strictly before score b under m.
func (m Metric) Better(a, b float32) bool {
	if m.HigherIsBetter() {
		return a > b
	}
	return a < b
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMetric, m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMetric resolves a metric name. Accepted names are "L2" (also
// "squared_l2", "euclidean") and "IP" (also "inner_product", "dot").
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "l2", "squared_l2", "squaredl2", "euclidean":
		return MetricL2, nil
	case "ip", "inner_product", "innerproduct", "dot":
		return MetricIP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMetric, name)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return SquaredL2, nil
	case MetricIP:
		return Dot, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMetric, m)
	}
}
