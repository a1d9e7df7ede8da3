// Command predict2k trains the 2k power model on ./data/cleanedData.csv and
// scores ./data/batchPredictions.csv. A ./config.json, when present, overrides
// the defaults.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"

	"github.com/guptarohit/asciigraph"

	"github.com/JoeRonaldson/Predict-1500/config"
	"github.com/JoeRonaldson/Predict-1500/pace"
	"github.com/JoeRonaldson/Predict-1500/pipeline"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
	"github.com/JoeRonaldson/Predict-1500/pkg/log"
)

func main() {
	if err := errors.SafeExecute("predict2k", run); err != nil {
		log.GetLogger().Error("run failed", log.ErrorKey, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadOrDefault(config.DefaultPath)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	if err := log.SetupLogger(cfg.LogLevel, os.Stderr); err != nil {
		return err
	}

	p, err := pipeline.New(cfg, log.GetLogger())
	if err != nil {
		return err
	}
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(res.Model.Summary())
	fmt.Println(asciigraph.Plot(res.History.Loss,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(4),
		asciigraph.Caption("training loss per epoch"),
	))
	fmt.Printf("\n%.2f%% error\n", res.MAPE)
	if !math.IsNaN(res.BaselineMAPE) {
		fmt.Printf("%.2f%% error (least squares baseline)\n", res.BaselineMAPE)
	}
	if res.Sample != nil {
		split, err := pace.Split2k(res.Sample.Watts)
		if err != nil {
			return err
		}
		fmt.Printf("sample athlete: %.1f W, %s /500m, %s 2k\n", res.Sample.Watts, res.Sample.Pace, pace.FormatDuration(split))
	}
	fmt.Printf("%d predictions written to %s\n", len(res.Predictions), cfg.PredictionOutputPath)
	return nil
}
