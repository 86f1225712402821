package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/inertial_telemetry/internal/acquire"
	"github.com/relabs-tech/inertial_telemetry/internal/sensors"
)

// ProbeRegister is one register in a probe dump.
type ProbeRegister struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
	Value   string `yaml:"value"`
	Default string `yaml:"default,omitempty"`
}

// ProbeReport is the YAML document written by Probe.
type ProbeReport struct {
	Bus       string          `yaml:"bus"`
	Time      string          `yaml:"time"`
	WhoAmI    string          `yaml:"who_am_i"`
	Identity  bool            `yaml:"identity_ok"`
	Registers []ProbeRegister `yaml:"registers"`
}

// Probe reads every readable register in the map and writes the values
// as YAML. It performs no writes.
func Probe(regs acquire.Registers, busName string, w io.Writer) (*ProbeReport, error) {
	id, err := regs.ReadRegister(byte(sensors.RegWhoAmI))
	if err != nil {
		return nil, fmt.Errorf("probe: WHO_AM_I: %w", err)
	}
	rep := &ProbeReport{
		Bus:      busName,
		Time:     time.Now().Format(time.RFC3339),
		WhoAmI:   fmt.Sprintf("0x%02X", id),
		Identity: id == sensors.WhoAmIValue,
	}

	for _, info := range sensors.RegisterMap() {
		if !strings.Contains(info.Access, "R") {
			continue
		}
		v, err := regs.ReadRegister(byte(info.Address))
		if err != nil {
			return nil, fmt.Errorf("probe: %s: %w", info.Name, err)
		}
		rep.Registers = append(rep.Registers, ProbeRegister{
			Address: fmt.Sprintf("0x%02X", byte(info.Address)),
			Name:    info.Name,
			Value:   fmt.Sprintf("0x%02X", v),
			Default: info.Default,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return nil, fmt.Errorf("probe: encode: %w", err)
	}
	return rep, enc.Close()
}
