package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classflow/classflow-api/pkg/jobs"
)

// Job types dispatched to the background queues.
const (
	JobTypeAutoAssign = "auto_assign_class"
	JobTypeRebalance  = "sync_block_template"
)

// Dispatcher fans mutation triggers out to the background queues. Triggers are
// fire-and-forget: a full queue or stopped worker pool is logged, never
// surfaced to the caller, since the next mutation re-enqueues the same work.
type Dispatcher struct {
	autoAssign *jobs.Queue
	rebalance  *jobs.Queue
	logger     *zap.Logger
}

// NewDispatcher wires the queues. Either queue may be nil, in which case its
// triggers are dropped.
func NewDispatcher(autoAssign, rebalance *jobs.Queue, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{autoAssign: autoAssign, rebalance: rebalance, logger: logger}
}

// TriggerAutoAssign queues a pairing run for the class.
func (d *Dispatcher) TriggerAutoAssign(classID string) {
	if d.autoAssign == nil || classID == "" {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: JobTypeAutoAssign, Payload: classID}
	if err := d.autoAssign.Enqueue(job); err != nil {
		d.logger.Warn("auto-assign trigger dropped", zap.String("class_id", classID), zap.Error(err))
	}
}

// TriggerRebalance queues a template sync for the block.
func (d *Dispatcher) TriggerRebalance(blockID string) {
	if d.rebalance == nil || blockID == "" {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: JobTypeRebalance, Payload: blockID}
	if err := d.rebalance.Enqueue(job); err != nil {
		d.logger.Warn("rebalance trigger dropped", zap.String("block_id", blockID), zap.Error(err))
	}
}
