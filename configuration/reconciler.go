package configuration

import "time"

type ReconcilerConfiguration struct {
	Interval time.Duration
}

func DefReconcilerConfiguration() *ReconcilerConfiguration {
	return &ReconcilerConfiguration{
		Interval: 5 * time.Second,
	}
}
