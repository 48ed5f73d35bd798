// Command detection-output runs the SSD detection output stage over location,
// confidence and prior tensors stored as .npy files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detection-output/config"
	"github.com/nvr-ai/go-detection-output/logger"
	"github.com/nvr-ai/go-detection-output/models/ssd"
)

func main() {
	var (
		configPath string
		locPath    string
		confPath   string
		priorPath  string
		outPath    string
	)
	flag.StringVar(&configPath, "file", config.DefaultConfigPath, "configuration file")
	flag.StringVar(&locPath, "loc", "loc.npy", "Location predictions, (images, priors*locClasses*4)")
	flag.StringVar(&confPath, "conf", "conf.npy", "Confidence scores, (images, priors*classes)")
	flag.StringVar(&priorPath, "prior", "prior.npy", "Prior boxes and variances, (1, 2, priors*4)")
	flag.StringVar(&outPath, "out", "detections.npy", "Output file for the (1, 1, count, 7) detections")
	flag.Parse()

	if err := config.Init(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.GetZapLogger()
	defer func() { _ = log.Sync() }()

	if err := run(log, config.Config.DetectionOutput, locPath, confPath, priorPath, outPath); err != nil {
		log.Fatal("Detection output failed", zap.Error(err))
	}
}

func run(log *zap.Logger, params ssd.Params, locPath, confPath, priorPath, outPath string) error {
	stage, err := ssd.NewDetectionOutput(params, ssd.WithLogger(log))
	if err != nil {
		return err
	}

	loc, err := readNpy(locPath)
	if err != nil {
		return err
	}
	conf, err := readNpy(confPath)
	if err != nil {
		return err
	}
	prior, err := readNpy(priorPath)
	if err != nil {
		return err
	}

	out, err := stage.ForwardTensors(loc, conf, prior)
	if err != nil {
		return err
	}

	count := out.Count()
	log.Info("Detection output complete",
		zap.Int("images", loc.Shape()[0]),
		zap.Int("detections", count),
		zap.Bool("saved", stage.Saving()))

	if count == 0 {
		log.Warn("No detections kept, output not written", zap.String("out", outPath))
		return nil
	}
	return writeNpy(outPath, out.Tensor())
}

func readNpy(path string) (*tensor.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening tensor")
	}
	defer f.Close()

	t := new(tensor.Dense)
	if err := t.ReadNpy(f); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return t, nil
}

func writeNpy(path string, t *tensor.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	if err := t.WriteNpy(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}
