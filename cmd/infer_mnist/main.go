package main

import "flag"
import "fmt"
import "strconv"
import "strings"

import "github.com/gofiber/fiber/v2/log"

import "github.com/neurlang/deepview/datasets"
import "github.com/neurlang/deepview/datasets/mnist"
import "github.com/neurlang/deepview/layer"
import "github.com/neurlang/deepview/net/feedforward"
import "github.com/neurlang/deepview/trainer"

func layers(s string) (o []int, err error) {
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		o = append(o, n)
	}
	return
}

func main() {
	checkpoint := flag.String("checkpoint", "", "weights file written by deepview")
	hidden := flag.String("layers", "128,64", "hidden layer widths of the checkpoint")
	mnistdir := flag.String("mnistdir", "", "directory holding the mnist files")
	show := flag.Int("show", 0, "print the prediction for this many test samples")
	flag.Parse()

	sizes, err := layers(*hidden)
	if err != nil {
		log.Fatalf("bad -layers: %v", err)
	}
	if err := (trainer.Config{Layers: sizes}).Validate(); err != nil {
		log.Fatal(err)
	}
	var test *mnist.Set
	if *mnistdir != "" {
		_, test, err = mnist.Load(*mnistdir, true)
	} else {
		_, test, err = mnist.New()
	}
	if err != nil {
		log.Fatal(err)
	}
	net, err := feedforward.New(sizes, trainer.InputDim, trainer.OutputDim, layer.NewAdam(0), nil)
	if err != nil {
		log.Fatal(err)
	}
	if *checkpoint != "" {
		if err := net.ReadCompressedWeightsFromFile(*checkpoint); err != nil {
			log.Fatal(err)
		}
	}
	var sample = make([]float64, test.Dim())
	for i := 0; i < *show && i < test.Len(); i++ {
		label := test.Sample(i, sample)
		fmt.Printf("sample %d: label %d predicted %d\n", i, label, net.Infer(sample))
	}
	ds, err := datasets.NewBatched(test, 256)
	if err != nil {
		log.Fatal(err)
	}
	acc, err := net.Accuracy(ds)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Accuracy: %.2f%% on %d samples\n", 100*acc, test.Len())
}
