package ports

import "time"

type StepMetrics interface {
	RecordStep(latency time.Duration)
	RecordStepTimeout()
	RecordReset()
}
