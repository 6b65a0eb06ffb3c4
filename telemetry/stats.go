package telemetry

import (
	"github.com/unixpickle/ctcnet"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RegisterParamStats registers the names used by
// ParamStats for every parameter and split.
func RegisterParamStats(sink Sink, params []*ctcnet.Param) {
	for _, split := range []Split{Train, Dev} {
		for _, p := range params {
			for _, name := range statNames(split, p) {
				sink.Register(name)
			}
		}
	}
}

// ParamStats emits the histogram, mean, standard
// deviation, max and min of every parameter.
//
// For a parameter "w" on the train split, the names are
// "train/w", "mean_train/w", "stddev_train/w",
// "max_train/w" and "min_train/w".
func ParamStats(sink Sink, split Split, params []*ctcnet.Param) {
	for _, p := range params {
		values := ctcnet.Floats(p.Var.Vector)
		if len(values) == 0 {
			continue
		}
		names := statNames(split, p)
		sink.Histogram(names[0], values)
		sink.Scalar(names[1], stat.Mean(values, nil))
		sink.Scalar(names[2], stat.PopStdDev(values, nil))
		sink.Scalar(names[3], floats.Max(values))
		sink.Scalar(names[4], floats.Min(values))
	}
}

func statNames(split Split, p *ctcnet.Param) []string {
	s := string(split)
	return []string{
		s + "/" + p.Name,
		"mean_" + s + "/" + p.Name,
		"stddev_" + s + "/" + p.Name,
		"max_" + s + "/" + p.Name,
		"min_" + s + "/" + p.Name,
	}
}
