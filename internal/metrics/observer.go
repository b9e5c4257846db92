package metrics

import (
	"nerva/pkg/engine"
)

// DagObserver adapts engine.Observer to record node executions and
// durations as Prometheus series, tagged with the owning dag's name.
type DagObserver struct {
	DagName string
}

// NewDagObserver returns an engine.Observer that feeds DagNodeExecutions
// and DagNodeDuration for the named dag.
func NewDagObserver(dagName string) *DagObserver {
	return &DagObserver{DagName: dagName}
}

func (o *DagObserver) OnEvent(e engine.NodeEvent) {
	if e.Type != engine.EventNodeExit {
		return
	}
	outcome := "ok"
	if e.Error != nil {
		outcome = "error"
	}
	ObserveDagNode(o.DagName, e.Node, outcome, e.Elapsed)
}
