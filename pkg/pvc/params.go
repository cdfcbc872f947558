// Package pvc defines the contracts this module consumes from the native
// PVCAM layer: the driver (open/close, parameter access, synchronous
// capture) and the stream engine (background capture with an optional
// disk-writing thread). Production builds satisfy these interfaces over
// cgo; MockDriver and MockEngine satisfy them in pure Go for tests and
// hardware-free development.
package pvc

// ParamID identifies one device parameter. IDs follow the native
// packing: (data type << 24) | (parameter class << 16) | index.
type ParamID uint32

// Attr selects which attribute of a parameter to read.
type Attr int16

// Parameter attributes.
const (
	AttrCurrent   Attr = 0
	AttrCount     Attr = 1
	AttrType      Attr = 2
	AttrMin       Attr = 3
	AttrMax       Attr = 4
	AttrDefault   Attr = 5
	AttrIncrement Attr = 6
	AttrAccess    Attr = 7
	AttrAvail     Attr = 8
)

// Native data types and parameter classes used in ID packing.
const (
	typeInt16   = 1 << 24
	typeFlt64   = 4 << 24
	typeUns16   = 6 << 24
	typeUns32   = 7 << 24
	typeUns64   = 8 << 24
	typeEnum    = 9 << 24
	typeBoolean = 11 << 24
	typeCharPtr = 13 << 24
	typeInt64   = 16 << 24

	classDevice = 0 << 16
	classSensor = 2 << 16
	classTiming = 3 << 16
)

// Device and identity parameters.
const (
	ParamDDVersion       ParamID = typeUns16 + classDevice + 12
	ParamCamFwVersion    ParamID = typeUns16 + classSensor + 532
	ParamChipName        ParamID = typeCharPtr + classSensor + 129
	ParamHeadSerNumAlpha ParamID = typeCharPtr + classSensor + 595
	ParamSerSize         ParamID = typeUns16 + classSensor + 54
	ParamParSize         ParamID = typeUns16 + classSensor + 53
)

// Sensor and readout parameters.
const (
	ParamPixTime     ParamID = typeUns16 + classSensor + 516
	ParamBitDepth    ParamID = typeInt16 + classSensor + 511
	ParamGainIndex   ParamID = typeInt16 + classSensor + 512
	ParamSpdtabIndex ParamID = typeInt16 + classSensor + 513
	ParamReadoutPort ParamID = typeEnum + classSensor + 247
	ParamAdcOffset   ParamID = typeInt16 + classSensor + 195
	ParamBinningSer  ParamID = typeEnum + classSensor + 165
	ParamBinningPar  ParamID = typeEnum + classSensor + 166

	ParamTemp         ParamID = typeInt16 + classSensor + 525
	ParamTempSetpoint ParamID = typeInt16 + classSensor + 526

	ParamClearMode    ParamID = typeEnum + classSensor + 523
	ParamPMode        ParamID = typeEnum + classSensor + 524
	ParamFrameCapable ParamID = typeBoolean + classSensor + 509
)

// Trigger and exposure parameters.
const (
	ParamExposureMode  ParamID = typeEnum + classSensor + 535
	ParamExposeOutMode ParamID = typeEnum + classSensor + 560

	ParamReadoutTime      ParamID = typeFlt64 + classSensor + 179
	ParamClearingTime     ParamID = typeInt64 + classSensor + 772
	ParamPostTriggerDelay ParamID = typeInt64 + classSensor + 773
	ParamPreTriggerDelay  ParamID = typeInt64 + classSensor + 774

	// ParamExpTime is the variable-timed exposure register written
	// per frame during VTM sequences. ParamExposureTime is the
	// regular exposure readback.
	ParamExpTime      ParamID = typeUns16 + classTiming + 1
	ParamExpRes       ParamID = typeEnum + classTiming + 2
	ParamExpResIndex  ParamID = typeUns16 + classTiming + 4
	ParamExposureTime ParamID = typeUns64 + classTiming + 8
)

// Post-processing parameters.
const (
	ParamPPIndex      ParamID = typeInt16 + classSensor + 542
	ParamPPFeatName   ParamID = typeCharPtr + classSensor + 543
	ParamPPParamIndex ParamID = typeInt16 + classSensor + 544
	ParamPPParamName  ParamID = typeCharPtr + classSensor + 545
	ParamPPParam      ParamID = typeUns32 + classSensor + 546
)

// Exposure trigger modes (extended trigger values, device representation).
const (
	TrigInternal   int32 = 7 << 8
	TrigFirst      int32 = 8 << 8
	TrigEdgeRising int32 = 9 << 8
	TrigLevel      int32 = 10 << 8
)

// Expose-out modes.
const (
	ExposeOutFirstRow       int32 = 0
	ExposeOutAllRows        int32 = 1
	ExposeOutAnyRow         int32 = 2
	ExposeOutRollingShutter int32 = 3
)

// Exposure time resolutions.
const (
	ExpResOneMillisec int32 = 0
	ExpResOneMicrosec int32 = 1
)

// Sensor clearing modes.
const (
	ClearNever              int32 = 0
	ClearPreExposure        int32 = 1
	ClearPreSequence        int32 = 2
	ClearPostSequence       int32 = 3
	ClearPrePostSequence    int32 = 4
	ClearPreExposurePostSeq int32 = 5
)

// Parallel clocking modes.
const (
	PModeNormal int32 = 0
	PModeFT     int32 = 1
)

// ExpModes maps operator-facing trigger mode names to device values.
// The odd capitalization of "Trigger first" is the vendor's.
var ExpModes = map[string]int32{
	"Internal Trigger": TrigInternal,
	"Trigger first":    TrigFirst,
	"Edge Trigger":     TrigEdgeRising,
	"Level Trigger":    TrigLevel,
}

// ExpOutModes maps expose-out signal mode names to device values.
var ExpOutModes = map[string]int32{
	"First Row":       ExposeOutFirstRow,
	"All Rows":        ExposeOutAllRows,
	"Any Row":         ExposeOutAnyRow,
	"Rolling Shutter": ExposeOutRollingShutter,
}

// ExpResolutions maps exposure resolution names to device values.
var ExpResolutions = map[string]int32{
	"One Millisecond": ExpResOneMillisec,
	"One Microsecond": ExpResOneMicrosec,
}

// ClearModes maps sensor clearing mode names to device values.
var ClearModes = map[string]int32{
	"Never":                      ClearNever,
	"Pre-Exposure":               ClearPreExposure,
	"Pre-Sequence":               ClearPreSequence,
	"Post-Sequence":              ClearPostSequence,
	"Pre-Post-Sequence":          ClearPrePostSequence,
	"Pre-Exposure Post-Sequence": ClearPreExposurePostSeq,
}
