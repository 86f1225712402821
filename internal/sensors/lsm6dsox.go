// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors holds the LSM6DSOX register map.
//
// Addresses are the vendor's published values (ST DS13136) and are a wire
// contract with the device; do not renumber.
package sensors

import "fmt"

// Register is an 8-bit LSM6DSOX register address.
type Register byte

// DefaultAddr is the LSM6DSOX I2C address with SDO/SA0 tied low.
const DefaultAddr uint16 = 0x6A

// WhoAmIValue is the fixed content of RegWhoAmI.
const WhoAmIValue byte = 0x6C

const (
	RegFuncCfgAccess Register = 0x01
	RegPinCtrl       Register = 0x02

	RegS4STphL Register = 0x04
	RegS4STphH Register = 0x05
	RegS4SRR   Register = 0x06

	RegFIFOCtrl1 Register = 0x07
	RegFIFOCtrl2 Register = 0x08
	RegFIFOCtrl3 Register = 0x09
	RegFIFOCtrl4 Register = 0x0A

	RegCounterBDR1 Register = 0x0B
	RegCounterBDR2 Register = 0x0C

	RegInt1Ctrl Register = 0x0D
	RegInt2Ctrl Register = 0x0E

	RegWhoAmI Register = 0x0F

	RegCtrl1XL Register = 0x10 // accelerometer ODR / full scale
	RegCtrl2G  Register = 0x11 // gyroscope ODR / full scale
	RegCtrl3C  Register = 0x12 // BDU, IF_INC, SW_RESET
	RegCtrl4C  Register = 0x13
	RegCtrl5C  Register = 0x14
	RegCtrl6C  Register = 0x15
	RegCtrl7G  Register = 0x16
	RegCtrl8XL Register = 0x17
	RegCtrl9XL Register = 0x18
	RegCtrl10C Register = 0x19

	RegAllIntSrc Register = 0x1A
	RegWakeUpSrc Register = 0x1B
	RegTapSrc    Register = 0x1C
	RegD6DSrc    Register = 0x1D

	RegStatus Register = 0x1E

	RegOutTempL Register = 0x20
	RegOutTempH Register = 0x21

	RegOutXLG Register = 0x22
	RegOutXHG Register = 0x23
	RegOutYLG Register = 0x24
	RegOutYHG Register = 0x25
	RegOutZLG Register = 0x26
	RegOutZHG Register = 0x27

	RegOutXLA Register = 0x28
	RegOutXHA Register = 0x29
	RegOutYLA Register = 0x2A
	RegOutYHA Register = 0x2B
	RegOutZLA Register = 0x2C
	RegOutZHA Register = 0x2D

	RegEmbFuncStatusMainpage Register = 0x35
	RegFSMStatusAMainpage    Register = 0x36
	RegFSMStatusBMainpage    Register = 0x37
	RegMLCStatusMainpage     Register = 0x38
	RegStatusMasterMainpage  Register = 0x39

	RegFIFOStatus1 Register = 0x3A
	RegFIFOStatus2 Register = 0x3B

	RegTimestamp0 Register = 0x40
	RegTimestamp1 Register = 0x41
	RegTimestamp2 Register = 0x42
	RegTimestamp3 Register = 0x43

	RegUIStatusOIS Register = 0x49

	RegUIOutXLGOIS Register = 0x4A
	RegUIOutXHGOIS Register = 0x4B
	RegUIOutYLGOIS Register = 0x4C
	RegUIOutYHGOIS Register = 0x4D
	RegUIOutZLGOIS Register = 0x4E
	RegUIOutZHGOIS Register = 0x4F

	RegUIOutXLAOIS Register = 0x50
	RegUIOutXHAOIS Register = 0x51
	RegUIOutYLAOIS Register = 0x52
	RegUIOutYHAOIS Register = 0x53
	RegUIOutZLAOIS Register = 0x54
	RegUIOutZHAOIS Register = 0x55

	RegTapCfg0   Register = 0x56
	RegTapCfg1   Register = 0x57
	RegTapCfg2   Register = 0x58
	RegTapThs6D  Register = 0x59
	RegIntDur2   Register = 0x5A
	RegWakeUpThs Register = 0x5B
	RegWakeUpDur Register = 0x5C
	RegFreeFall  Register = 0x5D
	RegMD1Cfg    Register = 0x5E
	RegMD2Cfg    Register = 0x5F

	RegS4SStCmdCode Register = 0x60
	RegS4SDtReg     Register = 0x61

	RegI3CBusAvb        Register = 0x62
	RegInternalFreqFine Register = 0x63

	RegUIIntOIS   Register = 0x6F
	RegUICtrl1OIS Register = 0x70
	RegUICtrl2OIS Register = 0x71
	RegUICtrl3OIS Register = 0x72

	RegXOfsUsr Register = 0x73
	RegYOfsUsr Register = 0x74
	RegZOfsUsr Register = 0x75

	RegFIFODataOutTag Register = 0x78
	RegFIFODataOutXL  Register = 0x79
	RegFIFODataOutXH  Register = 0x7A
	RegFIFODataOutYL  Register = 0x7B
	RegFIFODataOutYH  Register = 0x7C
	RegFIFODataOutZL  Register = 0x7D
	RegFIFODataOutZH  Register = 0x7E
)

// Control values used by the enable sequence.
const (
	Ctrl1XL416Hz2g byte = 0x60 // ODR_XL=416 Hz, FS_XL=±2 g
	Ctrl2G416Hz250 byte = 0x60 // ODR_G=416 Hz, FS_G=±250 dps
	Ctrl3CBDU      byte = 0x40 // block data update
	Int1DrdyG      byte = 0x02 // gyroscope data-ready on INT1
	StatusXLDA     byte = 0x01
	StatusGDA      byte = 0x02
	StatusTDA      byte = 0x04
)

// SampleRegisters lists the fourteen output registers in acquisition order:
// temperature, gyro X/Y/Z, accel X/Y/Z, low byte before high byte.
var SampleRegisters = [14]Register{
	RegOutTempL, RegOutTempH,
	RegOutXLG, RegOutXHG,
	RegOutYLG, RegOutYHG,
	RegOutZLG, RegOutZHG,
	RegOutXLA, RegOutXHA,
	RegOutYLA, RegOutYHA,
	RegOutZLA, RegOutZHA,
}

func (r Register) String() string {
	if info, ok := lookup[r]; ok {
		return info.Name
	}
	return fmt.Sprintf("0x%02X", byte(r))
}
