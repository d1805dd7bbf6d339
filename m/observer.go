package m

// Phase tells which pass produced a LayerEvent.
type Phase int

const (
	PhaseForward Phase = iota
	PhaseBackward
)

func (p Phase) String() string {
	if p == PhaseBackward {
		return "backward"
	}
	return "forward"
}

// LayerEvent carries the activations (forward) or deltas (backward) of one
// layer, bias slot included. Values is a copy owned by the observer.
type LayerEvent struct {
	Phase  Phase
	Layer  int
	Mode   Mode
	Values []float64
}

// Observer receives per-layer events from a Network. It is called
// synchronously, after the pass it reports on has completed.
type Observer interface {
	OnLayer(e LayerEvent)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(e LayerEvent)

func (f ObserverFunc) OnLayer(e LayerEvent) { f(e) }

func notifyObserver(o Observer, phase Phase, mode Mode, vectors [][]float64) {
	if o == nil {
		return
	}
	for l, v := range cloneVectors(vectors) {
		if v == nil {
			continue
		}
		o.OnLayer(LayerEvent{Phase: phase, Layer: l, Mode: mode, Values: v})
	}
}
