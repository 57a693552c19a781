package main

import "context"
import "flag"
import "os"
import "os/signal"
import "strings"
import "syscall"
import "time"

import "github.com/gofiber/fiber/v2/log"
import "github.com/pkg/errors"

import "github.com/neurlang/deepview/api"
import "github.com/neurlang/deepview/datasets"
import "github.com/neurlang/deepview/datasets/mnist"
import "github.com/neurlang/deepview/events"
import "github.com/neurlang/deepview/grid"
import "github.com/neurlang/deepview/parallel"
import "github.com/neurlang/deepview/trainer"

var levels = map[string]log.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func load(name, dir string, batch int, seed int64) (datasets.Dataset, error) {
	switch name {
	case "mnist":
		var train *mnist.Set
		var err error
		if dir != "" {
			train, _, err = mnist.Load(dir, true)
		} else {
			train, _, err = mnist.New()
		}
		if err != nil {
			return nil, errors.Wrap(err, "loading mnist")
		}
		return datasets.NewBatched(train, batch)
	case "synthetic":
		return datasets.NewBatched(datasets.Synthetic(6000, grid.Cells, trainer.OutputDim, seed), batch)
	}
	return nil, errors.Errorf("unknown dataset '%s'", name)
}

func main() {
	listen := flag.String("listen", ":5000", "address to serve on")
	dataset := flag.String("dataset", "mnist", "training set: mnist or synthetic")
	mnistdir := flag.String("mnistdir", "", "directory holding the mnist files, searched in the usual places when empty")
	batch := flag.Int("batch", 32, "batch size")
	lr := flag.Float64("lr", 0.001, "adam learning rate")
	seed := flag.Int64("seed", 0, "seed for initialization and shuffling, 0 is random")
	checkpoint := flag.String("checkpoint", "", "file the weights are saved to after every epoch")
	resume := flag.Bool("resume", false, "start new sessions from the checkpoint")
	loglevel := flag.String("loglevel", "info", "log level: trace, debug, info, warn or error")
	pgo := flag.Bool("pgo", false, "collect a cpu profile into default.pgo until exit")
	flag.Parse()

	level, ok := levels[strings.ToLower(*loglevel)]
	if !ok {
		log.Fatalf("unknown log level '%s'", *loglevel)
	}
	log.SetLevel(level)

	if *pgo {
		stop, err := profile()
		if err != nil {
			log.Fatal(err)
		}
		defer stop()
	}

	ds, err := load(*dataset, *mnistdir, *batch, *seed)
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("dataset ready", "dataset", *dataset, "batches", ds.Batches(), "threads", parallel.Threads())

	broadcaster := events.NewBroadcaster()
	ctrl, err := trainer.NewController(trainer.Options{
		Dataset:    ds,
		Factory:    trainer.FeedforwardFactory(*lr, *seed),
		Events:     broadcaster,
		Seed:       *seed,
		Checkpoint: *checkpoint,
		Resume:     *resume,
	})
	if err != nil {
		log.Fatal(err)
	}
	app := api.New(ctrl, broadcaster)

	var serveErr = make(chan error, 1)
	go func() {
		log.Infow("listening", "address", *listen)
		serveErr <- app.Listen(*listen)
	}()

	var sigs = make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		log.Infow("shutting down", "signal", sig.String())
	case err := <-serveErr:
		log.Errorw("server failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ctrl.Close(ctx); err != nil {
		log.Warnw("training did not stop in time", "error", err)
	}
	broadcaster.Close()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Warnw("server shutdown", "error", err)
	}
}
