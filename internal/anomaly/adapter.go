package anomaly

import (
	"fmt"

	"go.uber.org/zap"
)

// Detector labels each matrix row anomalous or normal.
type Detector interface {
	Detect(Matrix) ([]bool, error)
}

// Clusterer assigns each matrix row a cluster id in [0, k).
type Clusterer interface {
	Cluster(m Matrix, k int) ([]int, error)
}

// Adapter is the boundary around external statistical capabilities: any
// failure underneath becomes a logged warning and a neutral default
// (all-normal, all-cluster-0) so the pipeline continues.
type Adapter struct {
	log *zap.Logger
}

// NewAdapter creates an adapter logging through the given logger.
func NewAdapter(log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{log: log}
}

// DetectAnomalies runs a detector, degrading to all-normal on failure or
// panic.
func (a *Adapter) DetectAnomalies(d Detector, m Matrix) []bool {
	flags, err := a.detect(d, m)
	if err != nil {
		a.log.Warn("anomaly detection degraded to all-normal", zap.Error(err))
		return make([]bool, m.NumRows())
	}
	if len(flags) != m.NumRows() {
		a.log.Warn("anomaly detection returned wrong row count, degrading",
			zap.Int("got", len(flags)), zap.Int("want", m.NumRows()))
		return make([]bool, m.NumRows())
	}
	return flags
}

// ClusterRegions runs a clusterer, degrading to all-cluster-0 on failure
// or panic.
func (a *Adapter) ClusterRegions(c Clusterer, m Matrix, k int) []int {
	labels, err := a.cluster(c, m, k)
	if err != nil {
		a.log.Warn("clustering degraded to single cluster", zap.Error(err))
		return make([]int, m.NumRows())
	}
	if len(labels) != m.NumRows() {
		a.log.Warn("clustering returned wrong row count, degrading",
			zap.Int("got", len(labels)), zap.Int("want", m.NumRows()))
		return make([]int, m.NumRows())
	}
	return labels
}

func (a *Adapter) detect(d Detector, m Matrix) (flags []bool, err error) {
	defer recoverTo(&err)
	return d.Detect(m)
}

func (a *Adapter) cluster(c Clusterer, m Matrix, k int) (labels []int, err error) {
	defer recoverTo(&err)
	return c.Cluster(m, k)
}

// recoverTo converts a panic in an external capability into an error the
// caller degrades on.
func recoverTo(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = e
			return
		}
		*err = fmt.Errorf("capability panicked: %v", r)
	}
}
