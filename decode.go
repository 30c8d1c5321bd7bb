package pyjamaz

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/pyjamaz/pyjamaz/internal/encoding"
	xwebp "golang.org/x/image/webp"
)

// sourceFormat identifies the format of the input bytes handed to decode,
// distinct from Format (the set of output formats the search engine tries).
type sourceFormat int

const (
	sourceUnknown sourceFormat = iota
	sourceJPEG
	sourcePNG
	sourceWebP
	sourceAVIF
	sourceGIF
)

// detectFormat sniffs the format of raw image bytes from their magic
// number. Unlike the detector this system's prior implementation carried —
// which silently defaulted unrecognized input to JPEG — detectFormat
// returns sourceUnknown on anything it can't identify, and decode() turns
// that into ErrDecodeFailed rather than guessing. Guessing wrong here would
// feed garbage through a real codec and fail far more confusingly downstream.
func detectFormat(data []byte) sourceFormat {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return sourceJPEG
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return sourcePNG
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return sourceWebP
	case len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")) &&
		(bytes.Equal(data[8:12], []byte("avif")) || bytes.Equal(data[8:12], []byte("avis"))):
		return sourceAVIF
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return sourceGIF
	default:
		return sourceUnknown
	}
}

// decode turns arbitrary image bytes into a ReferenceRaster: an 8-bit
// RGBA pixel buffer, optionally EXIF-auto-oriented. It never writes to
// disk and never mutates its input.
func decode(data []byte, autoOrient bool) (*ReferenceRaster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeFailed)
	}

	sf := detectFormat(data)
	var img image.Image
	var err error

	switch sf {
	case sourceJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case sourcePNG:
		img, err = png.Decode(bytes.NewReader(data))
	case sourceWebP:
		img, err = xwebp.Decode(bytes.NewReader(data))
	case sourceAVIF:
		img, err = encoding.DecodeAVIF(data)
	case sourceGIF:
		// gif.Decode returns only the first frame — animation is out of scope.
		img, err = gif.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: unrecognized image format", ErrDecodeFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	pix := toNRGBA(img)

	if autoOrient && sf == sourceJPEG {
		o := readOrientation(data)
		pix = applyOrientation(pix, o)
	}

	return &ReferenceRaster{
		Pix:      pix,
		Width:    pix.Bounds().Dx(),
		Height:   pix.Bounds().Dy(),
		HasAlpha: hasAlpha(pix),
	}, nil
}
