// Command ctctrain trains a CTC model from a configuration
// file.
package main

import (
	"log"
	"os"

	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/profile"
	"github.com/unixpickle/ctcnet/anyctc"
	"github.com/unixpickle/ctcnet/anysgd"
	"github.com/unixpickle/ctcnet/checkpoint"
	"github.com/unixpickle/ctcnet/corpus"
	"github.com/unixpickle/ctcnet/ctcmodel"
	"github.com/unixpickle/ctcnet/internal/expconf"
	"github.com/unixpickle/ctcnet/telemetry"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/rip"
	"gopkg.in/urfave/cli.v1"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		essentials.Die(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ctctrain"
	app.Usage = "train a CTC acoustic model"
	app.ArgsUsage = "<config.yml> <model_dir>"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "train",
			Usage: "utterance `file` to train on",
		},
		cli.StringFlag{
			Name:  "dev",
			Usage: "optional utterance `file` for the dev label error rate",
		},
		cli.IntFlag{
			Name:  "epochs",
			Value: 40,
			Usage: "number of passes over the training data",
		},
		cli.Float64Flag{
			Name:  "decay",
			Value: 1,
			Usage: "learning rate decay applied every --decay-interval epochs",
		},
		cli.Float64Flag{
			Name:  "decay-start",
			Value: 10,
			Usage: "epoch at which the learning rate starts to decay",
		},
		cli.Float64Flag{
			Name:  "decay-interval",
			Value: 1,
			Usage: "epochs between learning rate decays",
		},
		cli.BoolFlag{
			Name:  "resume",
			Usage: "continue from the latest checkpoint in the model directory",
		},
		cli.StringFlag{
			Name:  "profile",
			Usage: "write a `cpu` or `mem` profile",
		},
	}
	app.Action = func(c *cli.Context) error {
		if c.NArg() != 2 {
			cli.ShowAppHelp(c)
			return cli.NewExitError("expected a config file and a model directory", 1)
		}
		switch c.String("profile") {
		case "cpu":
			defer profile.Start(profile.CPUProfile).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile).Stop()
		}
		return train(c, c.Args().Get(0), c.Args().Get(1))
	}
	return app
}

func train(c *cli.Context, configPath, modelDir string) error {
	if c.String("train") == "" {
		return cli.NewExitError("missing required flag: --train", 1)
	}
	log.Printf("CPU: %s (%d logical cores)", cpuid.CPU.BrandName, cpuid.CPU.LogicalCores)

	f, err := expconf.Load(configPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return err
	}
	if err := expconf.CopyFile(configPath, modelDir); err != nil {
		return err
	}
	sink := &telemetry.Logger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
	model, err := f.NewModel(sink)
	if err != nil {
		return err
	}

	state := anysgd.NewState()
	firstEpoch := 1
	if c.Bool("resume") {
		path, err := checkpoint.Resolve(modelDir, -1)
		if err != nil {
			return err
		}
		ckpt, err := checkpoint.Restore(path, model, state)
		if err != nil {
			return err
		}
		firstEpoch = ckpt.Epoch + 1
		log.Printf("Restored %s (step %d)", path, state.GlobalStep)
	}

	trainCfg := f.TrainConfig()
	trainCfg.Scheduled = true
	op, err := model.Train(trainCfg, state)
	if err != nil {
		return err
	}
	rater := &anysgd.DecayRater{
		Initial:  trainCfg.LearningRate,
		Decay:    c.Float64("decay"),
		Start:    c.Float64("decay-start"),
		Interval: c.Float64("decay-interval"),
	}

	trainBatches, err := loadBatches(f, c.String("train"), telemetry.Train)
	if err != nil {
		return err
	}
	var devBatches []*ctcmodel.Batch
	if c.String("dev") != "" {
		devBatches, err = loadBatches(f, c.String("dev"), telemetry.Dev)
		if err != nil {
			return err
		}
	}
	if len(trainBatches) == 0 {
		return cli.NewExitError("no training data", 1)
	}

	log.Println("Press ctrl+c once to stop...")
	r := rip.NewRIP()
	for epoch := firstEpoch; epoch <= c.Int("epochs"); epoch++ {
		for i, b := range trainBatches {
			select {
			case <-r.Chan():
				log.Println("Interrupted.")
				return nil
			default:
			}
			progress := float64(epoch-1) + float64(i)/float64(len(trainBatches))
			loss, err := op.Run(b, rater.Rate(progress))
			if err != nil {
				return err
			}
			log.Printf("epoch %d batch %d: step=%d loss=%f", epoch, i, op.State.GlobalStep, loss)
		}
		if err := devLER(model, devBatches); err != nil {
			return err
		}
		path, err := checkpoint.Save(modelDir, epoch, model, op.State)
		if err != nil {
			return err
		}
		log.Printf("Saved %s", path)
	}
	return nil
}

func loadBatches(f *expconf.File, path string, split telemetry.Split) ([]*ctcmodel.Batch, error) {
	utts, err := corpus.LoadUtterances(path)
	if err != nil {
		return nil, err
	}
	for _, u := range utts {
		u.Features, err = corpus.StackFrames(u.Features, f.Feature.NumStack, f.Feature.NumSkip)
		if err != nil {
			return nil, err
		}
	}
	return corpus.MakeBatches(utts, f.Param.BatchSize, split)
}

func devLER(m *ctcmodel.Model, batches []*ctcmodel.Batch) error {
	for _, b := range batches {
		logits, err := m.Forward(b, false)
		if err != nil {
			return err
		}
		decoded, err := anyctc.Decode(logits[0], b.SeqLens, anyctc.Greedy, 0)
		if err != nil {
			return err
		}
		if _, err := m.ComputeLER(telemetry.Dev, decoded, b.Labels[0]); err != nil {
			return err
		}
	}
	return nil
}
