package env

// Projector computes an Environment from the event sequence.
type Projector struct{}

// NewProjector creates a standard projector.
func NewProjector() *Projector {
	return &Projector{}
}

// Build folds events into a fresh environment. The result starts clean.
func (p *Projector) Build(events []Event) (*Environment, error) {
	e := New()
	for _, evt := range events {
		if err := evt.Apply(e); err != nil {
			return nil, err
		}
	}
	e.MarkClean()
	return e, nil
}
