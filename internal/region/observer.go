package region

// Observer receives store activity, e.g. for metrics
type Observer interface {
	// ObserveOperation is called once per store operation with its result
	ObserveOperation(op string, err error)

	// ObserveSnapshot is called after a full assignment read
	ObserveSnapshot(assigned, unassigned int)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error) {}
func (nopObserver) ObserveSnapshot(int, int)       {}
