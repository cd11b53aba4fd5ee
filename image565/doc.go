// Package image565 provides a 16-bit RGB565 image format for the SSD1289 display controller.
//
// The SSD1289 GDDRAM holds one 16-bit word per pixel: 5 bits red, 6 bits
// green, 5 bits blue. Pixels are stored as two bytes, most significant byte
// first, so a row of Pix can be streamed to the controller as-is.
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: 0       1
//	Colors: red     blue
//	Words:  0xF800  0x001F
//	Bytes:  F8 00   00 1F
//
// This package provides:
//
// - RGB565: A color type holding a packed 5-6-5 word
// - Model: A color model for converting standard Go colors to RGB565
// - Image: An image.Image implementation in controller word order
//
// Example usage:
//
//	// Create a 240x320 image
//	img := image565.NewImage(image.Rect(0, 0, 240, 320))
//
//	// Set a pixel to pure green
//	img.SetRGB565(10, 20, image565.RGB565(0x07E0))
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
package image565
