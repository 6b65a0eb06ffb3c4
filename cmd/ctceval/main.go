// Command ctceval computes the label error rate of a
// trained model on the eval1, eval2 and eval3 splits.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/klauspost/cpuid/v2"
	"github.com/unixpickle/ctcnet/anyctc"
	"github.com/unixpickle/ctcnet/corpus"
	"github.com/unixpickle/ctcnet/ctcmodel"
	"github.com/unixpickle/ctcnet/internal/expconf"
	"github.com/unixpickle/ctcnet/telemetry"
	"github.com/unixpickle/essentials"
	"gopkg.in/urfave/cli.v1"
)

var splitNames = []string{"eval1", "eval2", "eval3"}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		essentials.Die(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ctceval"
	app.Usage = "evaluate a trained CTC model"
	app.ArgsUsage = "<model_dir>"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "data",
			Value: "data",
			Usage: "`dir` holding eval1, eval2 and eval3 utterance files",
		},
		cli.IntFlag{
			Name:  "epoch",
			Value: -1,
			Usage: "epoch to restore; negative for the latest",
		},
		cli.StringFlag{
			Name:  "strategy",
			Value: "beam_search",
			Usage: "decoding strategy: greedy or beam_search",
		},
		cli.IntFlag{
			Name:  "beam-width",
			Value: 20,
			Usage: "beam width for beam search",
		},
		cli.IntFlag{
			Name:  "head",
			Usage: "index of the head to evaluate",
		},
		cli.IntFlag{
			Name:  "parallel",
			Value: cpuid.CPU.LogicalCores,
			Usage: "number of splits to evaluate at once",
		},
		cli.IntSliceFlag{
			Name:  "drop-label",
			Usage: "label ids removed before a character error rate is computed",
		},
	}
	app.Action = func(c *cli.Context) error {
		if c.NArg() != 1 {
			cli.ShowAppHelp(c)
			return cli.NewExitError("expected exactly one model directory", 1)
		}
		return evaluate(c, c.Args().First())
	}
	return app
}

func evaluate(c *cli.Context, modelDir string) error {
	strategy, err := anyctc.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}
	dir, err := expconf.OpenModelDir(modelDir, c.Int("epoch"), nil)
	if err != nil {
		return err
	}
	log.Printf("Model restored: %s", dir.Checkpoint)

	f := dir.File
	labelType := f.Corpus.LabelType
	if c.Int("head") > 0 {
		labelType = f.Corpus.LabelTypeSecond
	}
	opts := ctcmodel.EvalOptions{
		Strategy:  strategy,
		BeamWidth: c.Int("beam-width"),
		Head:      c.Int("head"),
		Parallel:  c.Int("parallel"),
	}
	if corpus.IsCharacter(labelType) && len(c.IntSlice("drop-label")) > 0 {
		opts.Normalize = corpus.DropLabels(c.IntSlice("drop-label")...)
	}

	var splits []ctcmodel.EvalSplit
	for _, name := range splitNames {
		utts, err := corpus.LoadUtterances(filepath.Join(c.String("data"), name))
		if err != nil {
			return err
		}
		for _, u := range utts {
			u.Features, err = corpus.StackFrames(u.Features, f.Feature.NumStack,
				f.Feature.NumSkip)
			if err != nil {
				return err
			}
		}
		batches, err := corpus.MakeBatches(utts, f.Param.BatchSize, telemetry.Split(name))
		if err != nil {
			return err
		}
		splits = append(splits, ctcmodel.EvalSplit{Name: name, Batches: batches})
	}

	results, err := ctcmodel.Evaluate(context.Background(), dir.Model, splits, opts)
	if err != nil {
		return err
	}
	rateName := corpus.ErrorRateName(labelType)
	for _, name := range splitNames {
		fmt.Printf("=== %s Evaluation ===\n", name)
		fmt.Printf("  %s: %f %%\n", rateName, results[name]*100)
	}
	return nil
}
