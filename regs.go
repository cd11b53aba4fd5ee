package ssd1289

// SSD1289 register indexes.
const (
	regOscillation     = 0x00
	regDriverOutput    = 0x01
	regDriveAC         = 0x02
	regPower1          = 0x03
	regCompare1        = 0x05
	regCompare2        = 0x06
	regDisplayControl  = 0x07
	regFrameCycle      = 0x0B
	regPower2          = 0x0C
	regPower3          = 0x0D
	regPower4          = 0x0E
	regGateScanStart   = 0x0F
	regSleepMode       = 0x10
	regEntryMode       = 0x11
	regHorizontalPorch = 0x16
	regVerticalPorch   = 0x17
	regPower5          = 0x1E
	regRAMData         = 0x22
	regWriteMask1      = 0x23
	regWriteMask2      = 0x24
	regFrameFrequency  = 0x25
	regGamma1          = 0x30
	regGamma2          = 0x31
	regGamma3          = 0x32
	regGamma4          = 0x33
	regGamma5          = 0x34
	regGamma6          = 0x35
	regGamma7          = 0x36
	regGamma8          = 0x37
	regGamma9          = 0x3A
	regGamma10         = 0x3B
	regVScroll1        = 0x41
	regVScroll2        = 0x42
	regHRAMAddr        = 0x44
	regVRAMStart       = 0x45
	regVRAMEnd         = 0x46
	regFirstScreen     = 0x48
	regFirstScreenEnd  = 0x49
	regSecondScreen    = 0x4A
	regSecondScreenEnd = 0x4B
	regXCounter        = 0x4E
	regYCounter        = 0x4F
)

// Display control values for R07h.
const (
	displayOn  = 0x0233
	displayOff = 0x0000
)

type regWrite struct {
	reg uint8
	val uint16
}

// initSequence returns the power-up register writes for rotation r.
//
// Order matters: the power control block must settle before the driver
// output and display control registers are written.
func initSequence(r Rotation) []regWrite {
	return []regWrite{
		{regOscillation, 0x0001},
		{regPower1, 0xA8A4},
		{regPower2, 0x0000},
		{regPower3, 0x080C},
		{regPower4, 0x2B00},
		{regPower5, 0x00B7},
		{regDriverOutput, 0x2B3F},
		{regDriveAC, 0x0600},
		{regSleepMode, 0x0000},
		{regEntryMode, rotations[r].entryMode},
		{regCompare1, 0x0000},
		{regCompare2, 0x0000},
		{regHorizontalPorch, 0xEF1C},
		{regVerticalPorch, 0x0003},
		{regDisplayControl, displayOn},
		{regFrameCycle, 0x0000},
		{regGateScanStart, 0x0000},
		{regVScroll1, 0x0000},
		{regVScroll2, 0x0000},
		{regFirstScreen, 0x0000},
		{regFirstScreenEnd, 0x013F},
		{regSecondScreen, 0x0000},
		{regSecondScreenEnd, 0x0000},
		{regHRAMAddr, 0xEF00},
		{regVRAMStart, 0x0000},
		{regVRAMEnd, 0x013F},
		{regGamma1, 0x0707},
		{regGamma2, 0x0204},
		{regGamma3, 0x0204},
		{regGamma4, 0x0502},
		{regGamma5, 0x0507},
		{regGamma6, 0x0204},
		{regGamma7, 0x0204},
		{regGamma8, 0x0502},
		{regGamma9, 0x0302},
		{regGamma10, 0x0302},
		{regWriteMask1, 0x0000},
		{regWriteMask2, 0x0000},
		{regFrameFrequency, 0x8000},
		{regYCounter, 0x0000},
		{regXCounter, 0x0000},
	}
}
