package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix marks environment variables that override file values,
// e.g. INERTIAL_I2C_ADDR=0x6B.
const EnvPrefix = "INERTIAL"

// Bus drivers.
const (
	DriverPeriph = "periph"
	DriverI2CDev = "i2cdev"
	DriverSim    = "sim"
)

// Config holds all application configuration values.
type Config struct {
	// Sensor bus
	BusDriver string
	I2CBus    string // periph bus name, "1" for /dev/i2c-1
	I2CDevice string // i2cdev character device
	I2CAddr   uint16

	// Enable sequence
	AccelCtrl    byte
	GyroCtrl     byte
	BDUCtrl      byte
	Int1Route    bool
	VerifyWhoAmI bool

	// Timing
	PollYieldMicros int

	// MQTT
	MQTTEnabled          bool
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicSample string

	// Serial downlink, disabled when SerialPort is empty
	SerialPort     string
	SerialBaudRate int

	// Logging
	LogLevel       string
	LogSampleEvery int

	// Web Server
	WebServerPort int

	// Register debug tool
	RegisterDebugPort          int
	RegisterDebugAllowedRanges []Range

	// Display
	DisplayI2CBus         string
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		BusDriver: DriverPeriph,
		I2CBus:    "1",
		I2CDevice: "/dev/i2c-1",
		I2CAddr:   0x6A,

		AccelCtrl: 0x60,
		GyroCtrl:  0x60,
		BDUCtrl:   0x40,

		MQTTEnabled:          true,
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "inertial-producer",
		MQTTClientIDConsole:  "inertial-console",
		MQTTClientIDWeb:      "inertial-web",
		MQTTClientIDDisplay:  "inertial-display",

		TopicSample: "inertial/lsm6dsox/sample",

		SerialBaudRate: 115200,

		LogLevel:       "info",
		LogSampleEvery: 416,

		WebServerPort: 8080,

		RegisterDebugPort:          8081,
		RegisterDebugAllowedRanges: []Range{{Lo: 0x10, Hi: 0x19}, {Lo: 0x73, Hi: 0x75}},

		DisplayI2CBus:         "1",
		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 200,
	}
}

// globalConfig is only set by InitGlobal and only read through Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE configuration file on top of Default. Lines
// starting with # are comments. INERTIAL_<KEY> environment variables
// override the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("env")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	keys := v.AllKeys()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if key, ok := strings.CutPrefix(name, EnvPrefix+"_"); ok {
			keys = append(keys, strings.ToLower(key))
		}
	}

	cfg := Default()
	for _, key := range keys {
		value := strings.TrimSpace(v.GetString(key))
		if err := cfg.setValue(strings.ToUpper(key), value); err != nil {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

func parseByte(key, value string) (byte, error) {
	n, err := strconv.ParseUint(value, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return byte(n), nil
}

func parseAddr(key, value string) (uint16, error) {
	n, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n > 0x7F {
		return 0, fmt.Errorf("%s must be a 7-bit address, got 0x%X", key, n)
	}
	return uint16(n), nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Sensor bus
	case "BUS_DRIVER":
		c.BusDriver = strings.ToLower(value)
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_DEVICE":
		c.I2CDevice = value
	case "I2C_ADDR":
		c.I2CAddr, err = parseAddr(key, value)

	// Enable sequence
	case "ACCEL_CTRL":
		c.AccelCtrl, err = parseByte(key, value)
	case "GYRO_CTRL":
		c.GyroCtrl, err = parseByte(key, value)
	case "BDU_CTRL":
		c.BDUCtrl, err = parseByte(key, value)
	case "INT1_ROUTE":
		c.Int1Route, err = parseBool(key, value)
	case "VERIFY_WHO_AM_I":
		c.VerifyWhoAmI, err = parseBool(key, value)

	// Timing
	case "POLL_YIELD_US":
		c.PollYieldMicros, err = parseInt(key, value)

	// MQTT
	case "MQTT_ENABLED":
		c.MQTTEnabled, err = parseBool(key, value)
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_SAMPLE":
		c.TopicSample = value

	// Serial downlink
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value)

	// Logging
	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)
	case "LOG_SAMPLE_EVERY":
		c.LogSampleEvery, err = parseInt(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	// Register debug tool
	case "REGISTER_DEBUG_PORT":
		c.RegisterDebugPort, err = parseInt(key, value)
	case "REGISTER_DEBUG_ALLOWED_RANGES":
		c.RegisterDebugAllowedRanges, err = ParseRanges(value)
		if err != nil {
			err = fmt.Errorf("invalid %s %q: %w", key, value, err)
		}

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		c.DisplayI2CAddr, err = parseAddr(key, value)
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return err
}

// validate checks that the combination of values is usable.
func (c *Config) validate() error {
	switch c.BusDriver {
	case DriverPeriph, DriverSim:
	case DriverI2CDev:
		if c.I2CDevice == "" {
			return fmt.Errorf("I2C_DEVICE is required for BUS_DRIVER=%s", DriverI2CDev)
		}
	default:
		return fmt.Errorf("BUS_DRIVER must be %s, %s or %s, got %q", DriverPeriph, DriverI2CDev, DriverSim, c.BusDriver)
	}
	if c.MQTTEnabled && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required when MQTT_ENABLED=true")
	}
	if c.TopicSample == "" {
		return fmt.Errorf("TOPIC_SAMPLE is required")
	}
	if c.SerialPort != "" && c.SerialBaudRate <= 0 {
		return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", c.SerialBaudRate)
	}
	if c.PollYieldMicros < 0 {
		return fmt.Errorf("POLL_YIELD_US must not be negative, got %d", c.PollYieldMicros)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", c.DisplayUpdateInterval)
	}
	return nil
}

// InitGlobal loads the global configuration. Only the first call has any
// effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
