package app

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/inertial_telemetry/internal/config"
	"github.com/relabs-tech/inertial_telemetry/internal/imu"
)

const (
	displayW = 128
	displayH = 64
)

// ssd1306Addr is the address the driver always talks to.
const ssd1306Addr = 0x3C

// readdressBus sends every transfer to addr. It lets the driver reach a
// panel strapped to the alternate address.
type readdressBus struct {
	i2c.Bus
	addr uint16
}

func (b readdressBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// latestSample is the display's copy of the newest sample.
type latestSample struct {
	mu   sync.RWMutex
	s    imu.Sample
	have bool
}

func (l *latestSample) set(s imu.Sample) {
	l.mu.Lock()
	l.s, l.have = s, true
	l.mu.Unlock()
}

func (l *latestSample) get() (imu.Sample, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.s, l.have
}

func drawLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayW, displayH))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawString(line)
	}
	return img
}

// RenderSample draws accel, gyro and temperature on a 128x64 frame.
func RenderSample(s imu.Sample, have bool) *image1bit.VerticalLSB {
	if !have {
		return drawLines("LSM6DSOX", "", "waiting for", "samples...")
	}
	return drawLines(
		fmt.Sprintf("A %+.2f%+.2f", s.Ax, s.Ay),
		fmt.Sprintf("  %+.2f", s.Az),
		fmt.Sprintf("G %+.2f%+.2f", s.Gx, s.Gy),
		fmt.Sprintf("  %+.2f", s.Gz),
		fmt.Sprintf("T %.1fC #%d", s.TempC, s.Seq),
	)
}

// RunDisplay mirrors the newest published sample on an SSD1306 OLED.
func RunDisplay(ctx context.Context, cfg *config.Config) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	b, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus %q: %w", cfg.DisplayI2CBus, err)
	}
	defer b.Close()

	var panelBus i2c.Bus = b
	if cfg.DisplayI2CAddr != ssd1306Addr {
		panelBus = readdressBus{Bus: b, addr: cfg.DisplayI2CAddr}
	}
	dev, err := ssd1306.NewI2C(panelBus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer func() {
		if err := dev.Halt(); err != nil {
			log.Warnf("display: halt: %v", err)
		}
	}()
	log.Infof("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	var latest latestSample
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, cfg.TopicSample, latest.set)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		s, have := latest.get()
		if !have || s.Seq != lastSeq {
			if err := dev.Draw(dev.Bounds(), RenderSample(s, have), image.Point{}); err != nil {
				log.Warnf("display: draw: %v", err)
			}
			lastSeq = s.Seq
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
