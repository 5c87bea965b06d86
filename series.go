package ocptv

import (
	"errors"
	"sync"
	"time"

	"github.com/roach88/ocptv/internal/artifact"
)

// MeasurementSeries is a started series of timestamped values. Create one
// with Step.StartMeasurementSeries.
type MeasurementSeries struct {
	step *Step
	id   string

	// mu orders element indices with their sequence numbers.
	mu    sync.Mutex
	index int
}

// ID returns the series id.
func (m *MeasurementSeries) ID() string { return m.id }

// SeriesElement is one value of a series.
type SeriesElement struct {
	// Value is a float, integer, bool, string or []string.
	Value any

	// Timestamp defaults to the run clock.
	Timestamp time.Time

	Metadata Metadata
}

// AddMeasurement emits the next element. Indices start at 0 and advance only
// when the element is written.
func (m *MeasurementSeries) AddMeasurement(el SeriesElement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := el.Timestamp
	if ts.IsZero() {
		ts = m.step.run.now()
	}
	err := m.step.emit(&artifact.MeasurementSeriesElement{
		Index:     m.index,
		Value:     el.Value,
		Timestamp: ts,
		SeriesID:  m.id,
		Metadata:  el.Metadata,
	})
	if err != nil {
		return err
	}
	m.index++
	return nil
}

// Count returns the number of elements written.
func (m *MeasurementSeries) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// End emits measurementSeriesEnd with the element count.
func (m *MeasurementSeries) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step.emit(&artifact.MeasurementSeriesEnd{SeriesID: m.id, TotalCount: m.index})
}

// Scope calls fn and always ends the series, also on panic.
func (m *MeasurementSeries) Scope(fn func(*MeasurementSeries) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if endErr := m.End(); endErr != nil {
				m.step.run.logger.Error().Err(endErr).Str("series", m.id).Msg("ending series after panic")
			}
			panic(p)
		}
		if endErr := m.End(); endErr != nil {
			err = errors.Join(err, endErr)
		}
	}()
	return fn(m)
}
