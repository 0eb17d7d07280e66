//go:build windows
// +build windows

package daemon

import (
	"bytes"
	"encoding/binary"
)

// trayIcon is a 16x16 monochrome calendar glyph assembled into ICO format at
// startup. Windows requires ICO data for tray icons.
var trayIcon = buildIcon()

func buildIcon() []byte {
	// Top-down pixel rows, bit set = white.
	rows := [16]uint16{
		0b0000000000000000,
		0b0010010000100100,
		0b0111111111111110,
		0b0100000000000010,
		0b0111111111111110,
		0b0101010101010010,
		0b0100000000000010,
		0b0101010101010010,
		0b0100000000000010,
		0b0101010101010010,
		0b0100000000000010,
		0b0101010101010010,
		0b0100000000000010,
		0b0111111111111110,
		0b0000000000000000,
		0b0000000000000000,
	}

	const (
		headerSize = 40
		paletteLen = 8
		bitmapLen  = 64 // 16 rows padded to 32 bits
		imageSize  = headerSize + paletteLen + bitmapLen*2
	)

	buf := new(bytes.Buffer)

	// ICONDIR
	binary.Write(buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(buf, binary.LittleEndian, uint16(1)) // type: icon
	binary.Write(buf, binary.LittleEndian, uint16(1)) // image count

	// ICONDIRENTRY
	buf.Write([]byte{16, 16, 2, 0}) // width, height, palette size, reserved
	binary.Write(buf, binary.LittleEndian, uint16(1)) // planes
	binary.Write(buf, binary.LittleEndian, uint16(1)) // bits per pixel
	binary.Write(buf, binary.LittleEndian, uint32(imageSize))
	binary.Write(buf, binary.LittleEndian, uint32(22)) // data offset

	// BITMAPINFOHEADER, height doubled for the XOR and AND planes
	binary.Write(buf, binary.LittleEndian, uint32(headerSize))
	binary.Write(buf, binary.LittleEndian, int32(16))
	binary.Write(buf, binary.LittleEndian, int32(32))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint32(0)) // BI_RGB
	binary.Write(buf, binary.LittleEndian, uint32(bitmapLen*2))
	buf.Write(make([]byte, 16)) // resolution and color usage fields

	// Palette: black, white
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x00})

	// XOR plane, bottom-up
	for i := len(rows) - 1; i >= 0; i-- {
		var line [4]byte
		binary.BigEndian.PutUint16(line[:2], rows[i])
		buf.Write(line[:])
	}

	// AND plane, all pixels opaque
	buf.Write(make([]byte, bitmapLen))

	return buf.Bytes()
}
