package metrics

// MultiSink fans out events to multiple sinks, stopping at the first error.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink wrapping the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordChange forwards the event to every sink.
func (m *MultiSink) RecordChange(ev ChangeEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordChange(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPatchSync forwards the event to every sink that supports it.
func (m *MultiSink) RecordPatchSync(ev PatchSyncEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(PatchSyncRecorder); ok {
			if err := r.RecordPatchSync(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDatabaseSize forwards the event to every sink that supports it.
func (m *MultiSink) RecordDatabaseSize(ev DatabaseSizeEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(DatabaseSizeRecorder); ok {
			if err := r.RecordDatabaseSize(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
