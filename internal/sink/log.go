package sink

import (
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/inertial_telemetry/internal/imu"
)

// Log writes every nth sample to a logger at info level.
type Log struct {
	logger log.FieldLogger
	every  uint64
	n      uint64
}

// NewLog logs one sample in every. every < 1 logs all of them.
func NewLog(logger log.FieldLogger, every int) *Log {
	if every < 1 {
		every = 1
	}
	return &Log{logger: logger, every: uint64(every)}
}

func (l *Log) Publish(s imu.Sample) error {
	l.n++
	if l.n%l.every != 0 {
		return nil
	}
	l.logger.WithFields(log.Fields{
		"seq":    s.Seq,
		"source": s.Source,
	}).Infof("accel=(%.4f, %.4f, %.4f) gyro=(%.4f, %.4f, %.4f) temp=%.2f",
		s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, s.TempC)
	return nil
}
