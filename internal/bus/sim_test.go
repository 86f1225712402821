package bus

import (
	"testing"
	"time"

	"github.com/relabs-tech/inertial_telemetry/internal/sensors"
)

func TestSimulatedWhoAmI(t *testing.T) {
	tr := NewTransport(OpenSimulated())
	v, err := tr.ReadRegister(byte(sensors.RegWhoAmI))
	if err != nil {
		t.Fatal(err)
	}
	if v != sensors.WhoAmIValue {
		t.Errorf("WHO_AM_I = 0x%02X, want 0x%02X", v, sensors.WhoAmIValue)
	}
}

func TestSimulatedStatusNeedsEnable(t *testing.T) {
	sim := NewSimulated()
	tr := NewTransport(sim)

	st, err := tr.ReadRegister(byte(sensors.RegStatus))
	if err != nil {
		t.Fatal(err)
	}
	if st != 0 {
		t.Fatalf("status before enable = 0x%02X, want 0", st)
	}

	if err := tr.WriteRegister(byte(sensors.RegCtrl1XL), sensors.Ctrl1XL416Hz2g); err != nil {
		t.Fatal(err)
	}
	st, err = tr.ReadRegister(byte(sensors.RegStatus))
	if err != nil {
		t.Fatal(err)
	}
	if st&sensors.StatusXLDA == 0 || st&sensors.StatusGDA != 0 {
		t.Errorf("status with accel only = 0x%02X, want XLDA without GDA", st)
	}
}

func TestSimulatedLittleEndianOutput(t *testing.T) {
	sim := NewSimulated()
	start := time.Unix(1000, 0)
	sim.start = start
	sim.now = func() time.Time { return start }

	tr := NewTransport(sim)
	if err := tr.WriteRegister(byte(sensors.RegCtrl1XL), sensors.Ctrl1XL416Hz2g); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.ReadRegister(byte(sensors.RegStatus)); err != nil {
		t.Fatal(err)
	}

	// Z axis at rest reads +1 g = 16393 counts = 0x4009.
	lo := sim.Register(sensors.RegOutZLA)
	hi := sim.Register(sensors.RegOutZHA)
	if lo != 0x09 || hi != 0x40 {
		t.Errorf("OUTZ_A = %02X %02X, want 09 40", lo, hi)
	}
}

func TestSimulatedReadyEvery(t *testing.T) {
	sim := NewSimulated()
	sim.SetReadyEvery(3)
	tr := NewTransport(sim)
	if err := tr.WriteRegister(byte(sensors.RegCtrl2G), sensors.Ctrl2G416Hz250); err != nil {
		t.Fatal(err)
	}

	var ready int
	for i := 0; i < 9; i++ {
		st, err := tr.ReadRegister(byte(sensors.RegStatus))
		if err != nil {
			t.Fatal(err)
		}
		if st != 0 {
			ready++
		}
	}
	if ready != 3 {
		t.Errorf("ready polls = %d, want 3", ready)
	}
}

func TestSimulatedOutputRegistersReadOnly(t *testing.T) {
	sim := NewSimulated()
	if _, err := sim.Write([]byte{byte(sensors.RegOutXLA), 0xAA}); err != nil {
		t.Fatal(err)
	}
	if v := sim.Register(sensors.RegOutXLA); v != 0 {
		t.Errorf("OUTX_L_A = 0x%02X after write, want 0", v)
	}
}
