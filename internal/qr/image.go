package qr

import (
	qrcode "github.com/skip2/go-qrcode"
)

// imageSize is the square pixel size of generated QR images.  256px keeps
// codes scannable from a phone across a classroom without bloating the
// response body.
const imageSize = 256

// EncodePNG renders a payload string as a PNG QR image.  Low error
// correction matches the printed labels already in circulation at the
// school.
func EncodePNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Low, imageSize)
}
