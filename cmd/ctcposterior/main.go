// Command ctcposterior writes the frame-level posteriors
// of every head of a trained model as CSV files.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/unixpickle/ctcnet/anyctc"
	"github.com/unixpickle/ctcnet/corpus"
	"github.com/unixpickle/ctcnet/internal/expconf"
	"github.com/unixpickle/ctcnet/telemetry"
	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/urfave/cli.v1"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		essentials.Die(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ctcposterior"
	app.Usage = "dump the posteriors of a trained CTC model"
	app.ArgsUsage = "<model_dir>"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "data",
			Value: "data/test",
			Usage: "utterance `file` to run the model on",
		},
		cli.IntFlag{
			Name:  "epoch",
			Value: -1,
			Usage: "epoch to restore; negative for the latest",
		},
		cli.StringFlag{
			Name:  "out",
			Usage: "output `dir`; defaults to <model_dir>/posteriors",
		},
	}
	app.Action = func(c *cli.Context) error {
		if c.NArg() != 1 {
			cli.ShowAppHelp(c)
			return cli.NewExitError("expected exactly one model directory", 1)
		}
		return dump(c, c.Args().First())
	}
	return app
}

func dump(c *cli.Context, modelDir string) error {
	dir, err := expconf.OpenModelDir(modelDir, c.Int("epoch"), nil)
	if err != nil {
		return err
	}
	log.Printf("Model restored: %s", dir.Checkpoint)
	outDir := c.String("out")
	if outDir == "" {
		outDir = filepath.Join(modelDir, "posteriors")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	f := dir.File
	utts, err := corpus.LoadUtterances(c.String("data"))
	if err != nil {
		return err
	}
	for _, u := range utts {
		u.Features, err = corpus.StackFrames(u.Features, f.Feature.NumStack, f.Feature.NumSkip)
		if err != nil {
			return err
		}
	}
	batches, err := corpus.MakeBatches(utts, 1, telemetry.Split("test"))
	if err != nil {
		return err
	}
	for i, b := range batches {
		logits, err := dir.Model.Forward(b, false)
		if err != nil {
			return err
		}
		for h, l := range logits {
			name := fmt.Sprintf("%s_%s.csv", utts[i].ID, dir.Model.Heads[h].Name)
			if err := writeCSV(filepath.Join(outDir, name), anyctc.Posteriors(l)); err != nil {
				return err
			}
		}
	}
	log.Printf("Wrote %d utterances to %s", len(batches), outDir)
	return nil
}

func writeCSV(path string, posteriors *mat.Dense) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	w := csv.NewWriter(file)
	rows, cols := posteriors.Dims()
	record := make([]string, cols)
	for r := 0; r < rows; r++ {
		for c := range record {
			record[c] = strconv.FormatFloat(posteriors.At(r, c), 'g', 6, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}
