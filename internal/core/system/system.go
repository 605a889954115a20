package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput   Phase = iota // 0: drain pointer events into the dispatcher
	PhaseUpdate               // 1: animate objects, tick the event queue
	PhasePersist              // 2: journal flush
	PhaseCleanup              // 3: destroy dismissed modal objects
)

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
