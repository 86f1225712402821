package sink

import (
	"errors"
	"io"

	"github.com/relabs-tech/inertial_telemetry/internal/imu"
)

// Fanout publishes every sample to each of its sinks in order. A failing
// sink does not keep the others from receiving the sample.
type Fanout []imu.SampleSink

func (f Fanout) Publish(s imu.Sample) error {
	var errs []error
	for _, sk := range f {
		if err := sk.Publish(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that is an io.Closer.
func (f Fanout) Close() error {
	var errs []error
	for _, sk := range f {
		if c, ok := sk.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
