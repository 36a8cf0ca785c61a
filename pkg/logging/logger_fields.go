package logging

import (
	"math"
	"time"
)

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

// Float64 stores non-finite values as strings so entries still marshal.
func Float64(key string, value float64) Field {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Field{Key: key, Value: formatNonFinite(value)}
	}
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain helpers

func Component(name string) Field {
	return String("component", name)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Iterations(n int) Field {
	return Int("iterations", n)
}

func Nodes(n int) Field {
	return Int("nodes", n)
}

func Edges(n int) Field {
	return Int("edges", n)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Source(s string) Field {
	return String("source", s)
}

// Point logs a coordinate pair as {"x":..,"y":..}.
func Point(key string, x, y float64) Field {
	return Field{Key: key, Value: map[string]any{
		"x": Float64("x", x).Value,
		"y": Float64("y", y).Value,
	}}
}

func formatNonFinite(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	default:
		return "-Inf"
	}
}
