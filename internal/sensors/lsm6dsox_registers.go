// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"strconv"
)

// BitField describes one field inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is register metadata shown by the register debug tool.
type RegisterInfo struct {
	Address     Register   `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// MarshalText renders the address as "0xNN".
func (r Register) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%02X", byte(r))), nil
}

// UnmarshalText accepts decimal or 0x-prefixed hex.
func (r *Register) UnmarshalText(b []byte) error {
	v, err := ParseRegister(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRegister parses "0x1E", "30" or a register name such as "STATUS_REG".
func ParseRegister(s string) (Register, error) {
	if v, err := strconv.ParseUint(s, 0, 8); err == nil {
		return Register(v), nil
	}
	for _, info := range registerMap {
		if info.Name == s {
			return info.Address, nil
		}
	}
	return 0, fmt.Errorf("unknown register %q", s)
}

// Lookup returns metadata for a register if it is in the map.
func Lookup(r Register) (RegisterInfo, bool) {
	info, ok := lookup[r]
	return info, ok
}

// RegisterMap returns metadata for the LSM6DSOX registers the tools expose.
func RegisterMap() []RegisterInfo {
	out := make([]RegisterInfo, len(registerMap))
	copy(out, registerMap)
	return out
}

var lookup = func() map[Register]RegisterInfo {
	m := make(map[Register]RegisterInfo, len(registerMap))
	for _, info := range registerMap {
		m[info.Address] = info
	}
	return m
}()

var registerMap = []RegisterInfo{
	// Identification
	{Address: RegWhoAmI, Name: "WHO_AM_I", Description: "Device ID (should be 0x6C)", Access: "R", Default: "0x6C"},

	// Interrupt routing
	{Address: RegInt1Ctrl, Name: "INT1_CTRL", Description: "INT1 pin control", Access: "RW", Default: "0x00",
		BitFields: []BitField{
			{Bits: "3", Name: "INT1_FIFO_TH", Description: "FIFO threshold on INT1"},
			{Bits: "1", Name: "INT1_DRDY_G", Description: "Gyroscope data ready on INT1", Values: "0=Disabled, 1=Enabled"},
			{Bits: "0", Name: "INT1_DRDY_XL", Description: "Accelerometer data ready on INT1", Values: "0=Disabled, 1=Enabled"},
		}},
	{Address: RegInt2Ctrl, Name: "INT2_CTRL", Description: "INT2 pin control", Access: "RW", Default: "0x00"},

	// Control registers
	{Address: RegCtrl1XL, Name: "CTRL1_XL", Description: "Accelerometer control 1", Access: "RW", Default: "0x00",
		BitFields: []BitField{
			{Bits: "7:4", Name: "ODR_XL", Description: "Accelerometer output data rate", Values: "0=Off, 1=12.5Hz, 2=26Hz, 3=52Hz, 4=104Hz, 5=208Hz, 6=416Hz, 7=833Hz, 8=1.66kHz, 9=3.33kHz, 10=6.66kHz"},
			{Bits: "3:2", Name: "FS_XL", Description: "Accelerometer full scale", Values: "0=±2g, 1=±16g, 2=±4g, 3=±8g"},
			{Bits: "1", Name: "LPF2_XL_EN", Description: "Second low-pass filter", Values: "0=Disabled, 1=Enabled"},
		}},
	{Address: RegCtrl2G, Name: "CTRL2_G", Description: "Gyroscope control 2", Access: "RW", Default: "0x00",
		BitFields: []BitField{
			{Bits: "7:4", Name: "ODR_G", Description: "Gyroscope output data rate", Values: "0=Off, 1=12.5Hz, 2=26Hz, 3=52Hz, 4=104Hz, 5=208Hz, 6=416Hz, 7=833Hz, 8=1.66kHz, 9=3.33kHz, 10=6.66kHz"},
			{Bits: "3:2", Name: "FS_G", Description: "Gyroscope full scale", Values: "0=±250dps, 1=±500dps, 2=±1000dps, 3=±2000dps"},
			{Bits: "1", Name: "FS_125", Description: "±125 dps full scale", Values: "0=FS_G, 1=±125dps"},
		}},
	{Address: RegCtrl3C, Name: "CTRL3_C", Description: "Control register 3", Access: "RW", Default: "0x04",
		BitFields: []BitField{
			{Bits: "7", Name: "BOOT", Description: "Reboot memory content"},
			{Bits: "6", Name: "BDU", Description: "Block data update", Values: "0=Continuous, 1=Not updated until MSB and LSB read"},
			{Bits: "5", Name: "H_LACTIVE", Description: "Interrupt activation level", Values: "0=Active high, 1=Active low"},
			{Bits: "4", Name: "PP_OD", Description: "INT pads mode", Values: "0=Push-pull, 1=Open drain"},
			{Bits: "3", Name: "SIM", Description: "SPI serial interface mode", Values: "0=4-wire, 1=3-wire"},
			{Bits: "2", Name: "IF_INC", Description: "Register address auto increment", Values: "0=Disabled, 1=Enabled"},
			{Bits: "0", Name: "SW_RESET", Description: "Software reset"},
		}},
	{Address: RegCtrl4C, Name: "CTRL4_C", Description: "Control register 4", Access: "RW", Default: "0x00"},
	{Address: RegCtrl5C, Name: "CTRL5_C", Description: "Control register 5 (rounding, self-test)", Access: "RW", Default: "0x00"},
	{Address: RegCtrl6C, Name: "CTRL6_C", Description: "Control register 6 (trigger, gyro LPF1)", Access: "RW", Default: "0x00"},
	{Address: RegCtrl7G, Name: "CTRL7_G", Description: "Gyroscope control 7 (HPF, OIS)", Access: "RW", Default: "0x00"},
	{Address: RegCtrl8XL, Name: "CTRL8_XL", Description: "Accelerometer control 8 (filtering)", Access: "RW", Default: "0x00"},
	{Address: RegCtrl9XL, Name: "CTRL9_XL", Description: "Accelerometer control 9 (I3C, DEN)", Access: "RW", Default: "0xE0"},
	{Address: RegCtrl10C, Name: "CTRL10_C", Description: "Control register 10 (timestamp)", Access: "RW", Default: "0x00"},

	// Status
	{Address: RegStatus, Name: "STATUS_REG", Description: "Data-ready status", Access: "R",
		BitFields: []BitField{
			{Bits: "2", Name: "TDA", Description: "Temperature data available"},
			{Bits: "1", Name: "GDA", Description: "Gyroscope data available"},
			{Bits: "0", Name: "XLDA", Description: "Accelerometer data available"},
		}},

	// Output data (read-only)
	{Address: RegOutTempL, Name: "OUT_TEMP_L", Description: "Temperature low byte", Access: "R"},
	{Address: RegOutTempH, Name: "OUT_TEMP_H", Description: "Temperature high byte", Access: "R"},
	{Address: RegOutXLG, Name: "OUTX_L_G", Description: "Gyroscope X-Axis low byte", Access: "R"},
	{Address: RegOutXHG, Name: "OUTX_H_G", Description: "Gyroscope X-Axis high byte", Access: "R"},
	{Address: RegOutYLG, Name: "OUTY_L_G", Description: "Gyroscope Y-Axis low byte", Access: "R"},
	{Address: RegOutYHG, Name: "OUTY_H_G", Description: "Gyroscope Y-Axis high byte", Access: "R"},
	{Address: RegOutZLG, Name: "OUTZ_L_G", Description: "Gyroscope Z-Axis low byte", Access: "R"},
	{Address: RegOutZHG, Name: "OUTZ_H_G", Description: "Gyroscope Z-Axis high byte", Access: "R"},
	{Address: RegOutXLA, Name: "OUTX_L_A", Description: "Accelerometer X-Axis low byte", Access: "R"},
	{Address: RegOutXHA, Name: "OUTX_H_A", Description: "Accelerometer X-Axis high byte", Access: "R"},
	{Address: RegOutYLA, Name: "OUTY_L_A", Description: "Accelerometer Y-Axis low byte", Access: "R"},
	{Address: RegOutYHA, Name: "OUTY_H_A", Description: "Accelerometer Y-Axis high byte", Access: "R"},
	{Address: RegOutZLA, Name: "OUTZ_L_A", Description: "Accelerometer Z-Axis low byte", Access: "R"},
	{Address: RegOutZHA, Name: "OUTZ_H_A", Description: "Accelerometer Z-Axis high byte", Access: "R"},

	// FIFO status (read-only, FIFO itself is not used)
	{Address: RegFIFOStatus1, Name: "FIFO_STATUS1", Description: "FIFO unread words, low byte", Access: "R"},
	{Address: RegFIFOStatus2, Name: "FIFO_STATUS2", Description: "FIFO status flags and unread words high bits", Access: "R"},

	// Timestamp
	{Address: RegTimestamp0, Name: "TIMESTAMP0", Description: "Timestamp byte 0", Access: "R"},
	{Address: RegTimestamp1, Name: "TIMESTAMP1", Description: "Timestamp byte 1", Access: "R"},
	{Address: RegTimestamp2, Name: "TIMESTAMP2", Description: "Timestamp byte 2", Access: "R"},
	{Address: RegTimestamp3, Name: "TIMESTAMP3", Description: "Timestamp byte 3", Access: "R"},

	// User offsets
	{Address: RegXOfsUsr, Name: "X_OFS_USR", Description: "Accelerometer X user offset", Access: "RW", Default: "0x00"},
	{Address: RegYOfsUsr, Name: "Y_OFS_USR", Description: "Accelerometer Y user offset", Access: "RW", Default: "0x00"},
	{Address: RegZOfsUsr, Name: "Z_OFS_USR", Description: "Accelerometer Z user offset", Access: "RW", Default: "0x00"},
}
