package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/marwan116/micrograd"
	"github.com/marwan116/micrograd/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	// 1. A tiny regression dataset: 3 features, 1 target.
	xs := [][]*micrograd.Value{
		micrograd.Values(2.0, 3.0, -1.0),
		micrograd.Values(3.0, -1.0, 0.5),
		micrograd.Values(0.5, 1.0, 1.0),
		micrograd.Values(1.0, 1.0, -1.0),
	}
	ys := micrograd.Values(1.0, -1.0, -1.0, 1.0)

	// 2. Initialize the model from the configured layer sizes.
	n := micrograd.NewMLP(rng, len(xs[0]), cfg.Hidden)

	fmt.Printf("Starting training (seed=%d, lr=%g, epochs=%d, hidden=%v)...\n",
		cfg.Seed, cfg.LearningRate, cfg.Epochs, cfg.Hidden)

	// 3. Training loop: the core only exposes parameters and gradients;
	// the update step lives out here.
	for k := 0; k < cfg.Epochs; k++ {
		// Forward pass: summed squared error over the batch.
		loss := micrograd.NewLabeledValue(0.0, "loss")
		for i, x := range xs {
			out, err := n.Call(x)
			if err != nil {
				log.Fatalf("forward: %v", err)
			}
			diff := out[0].Sub(ys[i])
			sqErr, err := diff.Pow(2)
			if err != nil {
				log.Fatalf("loss: %v", err)
			}
			loss = loss.Add(sqErr)
		}

		// Zero gradients, then backprop through the whole batch graph.
		n.ZeroGrad()
		loss.Backward()

		// Gradient descent step.
		for _, p := range n.Parameters() {
			p.SetData(p.Data() - cfg.LearningRate*p.Grad())
		}

		fmt.Printf("Step %d: loss %f\n", k, loss.Data())
	}

	// Check final predictions.
	fmt.Println("\nFinal predictions:")
	for i, x := range xs {
		out, err := n.Call(x)
		if err != nil {
			log.Fatalf("forward: %v", err)
		}
		fmt.Printf("Sample %d: target %f, prediction %f\n", i, ys[i].Data(), out[0].Data())
	}
}
