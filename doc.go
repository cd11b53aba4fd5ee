// Package ssd1289 controls a SSD1289 TFT display over a GPIO parallel bus or SPI.
//
// The SSD1289 is a 240×320 RGB565 TFT controller. It is found on the
// Sainsmart 3.2" module and on many ITDB02 style boards with a 16-bit
// 8080-style parallel interface.
//
// # Display Characteristics
//
// - 240×320 native portrait resolution, 65k colors (RGB565)
// - Rotation by 0, 90, 180 or 270 degrees, fixed at creation
// - 16-bit parallel bus, or 8-bit bus behind an external latch
// - Optional SPI bridge where each 16-bit word is sent as two bytes
//
// # Hardware Connection
//
// Connect the module's parallel header to GPIO lines:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	RS          → GPIO (DC, data/command select)
//	WR          → GPIO (write strobe, active low)
//	RD          → 3.3V (reads are not used)
//	CS          → GND
//	RESET       → Optional: GPIO for hardware reset
//	DB0..DB15   → 16 GPIO lines
//
// For the latched 8-bit mode, wire DB8..DB15 to the 8 GPIO data lines and
// DB0..DB7 to the outputs of a '573 style latch fed from the same 8 lines,
// with its LE input on the Latch pin.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"image"
//		"image/color"
//		"image/draw"
//
//		"github.com/flavioheleno/ssd1289"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		pins := ssd1289.Pins{
//			DC: gpioreg.ByName("GPIO25"),
//			WR: gpioreg.ByName("GPIO24"),
//		}
//		for i, name := range []string{"GPIO2", "GPIO3", ...} {
//			pins.DB[i] = gpioreg.ByName(name)
//		}
//
//		dev, _ := ssd1289.NewGPIO(pins, &ssd1289.Opts{Rotation: ssd1289.Rotate90})
//		defer dev.Halt()
//
//		img := image.NewRGBA(dev.Bounds())
//		draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{0, 0, 255, 255}), image.Point{}, draw.Src)
//		dev.Draw(dev.Bounds(), img, image.Point{})
//	}
//
// # Bus Variants
//
// The variant is picked once from Opts and kept for the life of the Dev:
//
//	Opts{}              // optimized: only lines whose bit changed are driven
//	Opts{Slow: true}    // optimized, with extra setup time on every strobe
//	Opts{Naive: true}   // all 16 lines driven for every word
//	Opts{Latched: true} // 8 lines plus external latch
//
// The optimized variants remember the levels they last drove. The first word
// after creation always drives every line.
//
// # Drawing Modes
//
// Draw keeps a copy of the last frame and only sends the rows that changed.
// Rows always go out full width.
//
// Write streams raw RGB565 words, most significant byte first, into the RAM
// window primed by SetAddrWin:
//
//	dev.SetAddrWin(0, 0, 239, 319)
//	dev.Write(pixels) // 240*320*2 bytes
//
// # Register Access
//
// WriteReg exposes the controller registers directly:
//
//	dev.WriteReg(0x07, 0x0000) // display off
//	dev.WriteReg(0x22)         // index only, primes RAM data
//
// # Datasheet
//
// https://www.lcdwiki.com/res/MAR3201/SSD1289.pdf
//
// # Compatibility with periph.io
//
// This driver implements the display.Drawer interface from periph.io:
// https://pkg.go.dev/periph.io/x/conn/v3/display
package ssd1289
