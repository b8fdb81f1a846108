package main

import (
	"errors"
	"fmt"
	"math"
	"os"
)

var errEmpty = errors.New("empty input")

// Stats summarizes a series of samples
type Stats struct {
	Count    int
	Mean     float64
	Min, Max float64
}

// Summarize computes count, mean and range of xs
func Summarize(xs []float64) (Stats, error) {
	if len(xs) == 0 {
		return Stats{}, errEmpty
	}
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, x := range xs {
		sum += x
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}
	s.Count = len(xs)
	s.Mean = sum / float64(s.Count)
	return s, nil
}

// Grade buckets a score
func (s Stats) Grade() string {
	switch {
	case s.Count == 0:
		return "none"
	case s.Mean >= 90 && s.Min >= 80:
		return "excellent"
	case s.Mean >= 70 || s.Max >= 95:
		return "good"
	default:
		return "poor"
	}
}

// Drain sums values from ch until it closes or done fires
func Drain(ch <-chan float64, done <-chan struct{}) float64 {
	total := 0.0
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return total
			}
			total += v
		case <-done:
			return total
		}
	}
}

func main() {
	s, err := Summarize([]float64{72, 88, 95, 64})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%+v %s\n", s, s.Grade())
}
