// pmc-train: trains a multi-layer perceptron on a CSV file or a synthetic
// dataset and reports the loss per epoch.
//
// Usage:
//
//	pmc-train --arch="2 3 1" --dataset=xor --epochs=500 --lr=0.1
//	pmc-train --arch="4 8 1" --data=samples.csv --mode=regression --normalize
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"golang.org/x/exp/rand"

	"pmc_lib/m"
	"pmc_lib/utils"
)

var (
	arch         = flag.String("arch", "2 3 1", "Layer sizes, input first, e.g. \"2 3 1\"")
	dataPath     = flag.String("data", "", "CSV file: inputs then targets on every line")
	dataset      = flag.String("dataset", "xor", "Synthetic dataset used without --data: xor, sine")
	samples      = flag.Int("samples", 64, "Number of synthetic samples for sine")
	epochs       = flag.Int("epochs", 500, "Number of training epochs")
	learningRate = flag.Float64("lr", m.DefaultLearningRate, "Learning rate")
	mode         = flag.String("mode", "classification", "classification or regression")
	seed         = flag.Int64("seed", 42, "Random seed")
	shuffle      = flag.Bool("shuffle", true, "Shuffle samples every epoch")
	normalize    = flag.Bool("normalize", false, "Standardise input columns")
	verbose      = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	layers, err := utils.ParseArchitecture(*arch)
	if err != nil {
		log.Fatalf("parsing architecture: %v", err)
	}
	config := utils.Config{
		Architecture: layers,
		LearningRate: *learningRate,
		Epochs:       *epochs,
		Mode:         *mode,
		Seed:         *seed,
		DataPath:     *dataPath,
		Shuffle:      *shuffle,
		Normalize:    *normalize,
	}
	if err := utils.ValidateConfig(&config); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	trainMode, _ := m.ParseMode(config.Mode)

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Architecture:  %v\n", config.Architecture)
	fmt.Printf("  Mode:          %s\n", trainMode)
	fmt.Printf("  Epochs:        %d\n", config.Epochs)
	fmt.Printf("  Learning Rate: %.4f\n", config.LearningRate)
	fmt.Printf("  Seed:          %d\n", config.Seed)
	fmt.Println()

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	topology := m.Topology(config.Architecture)
	lines, err := loadLines(config, topology)
	if err != nil {
		log.Fatalf("loading data: %v", err)
	}
	if len(lines) == 0 {
		log.Fatalf("no samples to train on")
	}
	if config.Normalize {
		lines = m.NormalizeLines(lines, m.CalculateStdDev(lines), m.CalculateMean(lines))
	}
	stats.DataLoadingTime = time.Since(start)
	utils.Logf("Loaded %d samples", len(lines))

	start = time.Now()
	net, err := m.NewNetwork(m.Config{
		Topology:     topology,
		LearningRate: config.LearningRate,
		Source:       m.NewSource(uint64(config.Seed)),
	})
	if err != nil {
		log.Fatalf("creating network: %v", err)
	}
	stats.ModelInitTime = time.Since(start)

	timer := &phaseTimer{stats: stats, outputLayer: len(topology) - 1}
	net.SetObserver(timer)

	rng := rand.New(m.NewSource(uint64(config.Seed) + 1))
	fmt.Println("Starting training...")
	for epoch := 0; epoch < config.Epochs; epoch++ {
		epochStart := time.Now()
		if config.Shuffle {
			m.Shuffle(lines, rng)
		}

		epochLoss := 0.0
		for i, line := range lines {
			timer.begin()
			if err := net.Train(line.Inputs, line.Targets, trainMode); err != nil {
				log.Fatalf("epoch %d, sample %d: %v", epoch+1, i, err)
			}
			timer.end()

			loss, err := m.SquaredError(timer.output, line.Targets)
			if err != nil {
				log.Fatalf("epoch %d, sample %d: %v", epoch+1, i, err)
			}
			epochLoss += loss
		}

		if *verbose || epoch == config.Epochs-1 {
			fmt.Printf("Epoch %d/%d | Loss: %.6f | Time: %.2fs\n",
				epoch+1, config.Epochs, epochLoss/float64(len(lines)), time.Since(epochStart).Seconds())
		}
	}
	net.SetObserver(nil)
	stats.TotalTime = time.Since(totalStart)

	if err := report(net, lines, trainMode); err != nil {
		log.Fatalf("evaluating: %v", err)
	}
	utils.PrintTimingStats(stats, config.Epochs*len(lines))
}

func loadLines(config utils.Config, topology m.Topology) (m.Lines, error) {
	if config.DataPath != "" {
		file, err := os.Open(config.DataPath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return m.GetLines(file, topology.Inputs(), topology.Outputs())
	}

	rng := rand.New(m.NewSource(uint64(config.Seed)))
	switch *dataset {
	case "xor":
		if topology.Inputs() != 2 || topology.Outputs() != 1 {
			return nil, fmt.Errorf("xor needs 2 inputs and 1 output, architecture has %d and %d",
				topology.Inputs(), topology.Outputs())
		}
		return m.Lines{
			{Inputs: []float64{-1, -1}, Targets: []float64{-1}},
			{Inputs: []float64{-1, 1}, Targets: []float64{1}},
			{Inputs: []float64{1, -1}, Targets: []float64{1}},
			{Inputs: []float64{1, 1}, Targets: []float64{-1}},
		}, nil
	case "sine":
		if topology.Inputs() != 1 || topology.Outputs() != 1 {
			return nil, fmt.Errorf("sine needs 1 input and 1 output, architecture has %d and %d",
				topology.Inputs(), topology.Outputs())
		}
		lines := make(m.Lines, *samples)
		for i := range lines {
			x := rng.Float64()*2 - 1
			lines[i] = m.Line{Inputs: []float64{x}, Targets: []float64{math.Sin(math.Pi * x)}}
		}
		return lines, nil
	}
	return nil, fmt.Errorf("unknown dataset %q", *dataset)
}

// phaseTimer splits the wall-clock time of Network.Train into its passes.
// Network reports a pass only after it has completed: the first forward
// event closes the forward pass and the first backward event closes the
// backward pass. Whatever remains until Train returns is the update.
type phaseTimer struct {
	stats       *utils.TimingStats
	outputLayer int

	start, forwardDone, backwardDone time.Time
	// output is the pre-update prediction of the last sample, bias excluded
	output []float64
}

func (p *phaseTimer) begin() {
	p.start = time.Now()
	p.forwardDone, p.backwardDone = time.Time{}, time.Time{}
	p.output = nil
}

func (p *phaseTimer) OnLayer(e m.LayerEvent) {
	now := time.Now()
	switch e.Phase {
	case m.PhaseForward:
		if p.forwardDone.IsZero() {
			p.forwardDone = now
			p.stats.ForwardPassTime += now.Sub(p.start)
		}
		if e.Layer == p.outputLayer {
			p.output = e.Values[1:]
		}
	case m.PhaseBackward:
		if p.backwardDone.IsZero() {
			p.backwardDone = now
			p.stats.BackwardPassTime += now.Sub(p.forwardDone)
		}
	}
}

func (p *phaseTimer) end() {
	if !p.backwardDone.IsZero() {
		p.stats.UpdateTime += time.Since(p.backwardDone)
	}
}

func report(net *m.Network, lines m.Lines, mode m.Mode) error {
	correct, total := 0, 0
	loss := 0.0
	for _, line := range lines {
		out, err := net.Compute(line.Inputs, mode)
		if err != nil {
			return err
		}
		l, err := m.SquaredError(out, line.Targets)
		if err != nil {
			return err
		}
		loss += l
		for j, o := range out {
			total++
			if math.Signbit(o) == math.Signbit(line.Targets[j]) {
				correct++
			}
		}
	}

	fmt.Printf("\nFinal loss: %.6f\n", loss/float64(len(lines)))
	if mode == m.Classification {
		fmt.Printf("Sign accuracy: %d/%d (%.1f%%)\n", correct, total, float64(correct)/float64(total)*100)
	}
	return nil
}
