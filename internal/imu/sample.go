package imu

import "time"

// Sample is one decoded LSM6DSOX acquisition.
type Sample struct {
	Source string    `json:"source"`
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`

	Ax float64 `json:"ax"` // accel, g
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Gx float64 `json:"gx"` // gyro, same 1/16384 scale as accel
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	TempC float64 `json:"temp_c"`
}

// SampleSink receives decoded samples.
type SampleSink interface {
	Publish(Sample) error
}
