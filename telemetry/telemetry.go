// Package telemetry defines the sink that models report
// losses, error rates and parameter statistics to.
//
// Components never keep their own lists of summaries;
// they emit named events to whichever Sink they are given.
package telemetry

import (
	"log"
	"sort"
	"sync"
)

// A Split names the data a value was computed on.
type Split string

// These are the splits a model reports on.
const (
	Train Split = "train"
	Dev   Split = "dev"
)

// Name joins a base name and the split, e.g. "loss_train".
func (s Split) Name(base string) string {
	return base + "_" + string(s)
}

// A Sink receives named scalar and histogram events.
//
// Names are registered once before they are used.
// Implementations must be safe for concurrent use.
type Sink interface {
	Register(name string)
	Scalar(name string, value float64)
	Histogram(name string, values []float64)
}

// Nop is a Sink that discards everything.
type Nop struct{}

func (Nop) Register(name string)                    {}
func (Nop) Scalar(name string, value float64)       {}
func (Nop) Histogram(name string, values []float64) {}

// A Recorder is a Sink that keeps every event in memory.
type Recorder struct {
	lock       sync.Mutex
	registered map[string]int
	scalars    map[string][]float64
	histograms map[string][][]float64
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		registered: map[string]int{},
		scalars:    map[string][]float64{},
		histograms: map[string][][]float64{},
	}
}

// Register counts the registration.
func (r *Recorder) Register(name string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.registered[name]++
}

// Scalar records the value.
func (r *Recorder) Scalar(name string, value float64) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.scalars[name] = append(r.scalars[name], value)
}

// Histogram records a copy of the values.
func (r *Recorder) Histogram(name string, values []float64) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.histograms[name] = append(r.histograms[name], append([]float64{}, values...))
}

// Registrations returns the number of times the name was
// registered.
func (r *Recorder) Registrations(name string) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.registered[name]
}

// Scalars returns every value recorded for the name.
func (r *Recorder) Scalars(name string) []float64 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]float64{}, r.scalars[name]...)
}

// Histograms returns every histogram recorded for the
// name.
func (r *Recorder) Histograms(name string) [][]float64 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([][]float64{}, r.histograms[name]...)
}

// Names returns the sorted names of all recorded scalars.
func (r *Recorder) Names() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	var res []string
	for name := range r.scalars {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// Logger is a Sink that prints scalars to a log.Logger.
// Histograms are summarized by their size.
type Logger struct {
	Logger *log.Logger
}

// Register ignores the name.
func (l *Logger) Register(name string) {}

// Scalar logs the value.
func (l *Logger) Scalar(name string, value float64) {
	l.Logger.Printf("%s=%f", name, value)
}

// Histogram logs the number of values.
func (l *Logger) Histogram(name string, values []float64) {
	l.Logger.Printf("%s: histogram of %d values", name, len(values))
}
