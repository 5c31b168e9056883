// Package distance provides the metric family used by the flat index.
//
// # Supported Metrics
//
//   - MetricL2: Squared Euclidean distance (lower is more similar)
//   - MetricIP: Inner product (higher is more similar)
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	s := distance.Dot(a, b)
//	m, err := distance.ParseMetric("IP")
package distance
