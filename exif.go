package pyjamaz

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"
)

// orientation is an EXIF orientation tag value.
type orientation int

const (
	orientNormal      orientation = 1
	orientFlipH       orientation = 2
	orientRotate180   orientation = 3
	orientFlipV       orientation = 4
	orientTranspose   orientation = 5
	orientRotate90CW  orientation = 6
	orientTransverse  orientation = 7
	orientRotate270CW orientation = 8
)

// readOrientation reads the EXIF orientation tag from JPEG bytes, returning
// orientNormal if the input is not JPEG or carries no orientation tag. This
// is a minimal APP1/TIFF walk — it reads only the orientation entry, not the
// full EXIF tree.
func readOrientation(data []byte) orientation {
	r := bytes.NewReader(data)

	var soi [2]byte
	if _, err := io.ReadFull(r, soi[:]); err != nil {
		return orientNormal
	}
	if soi[0] != 0xFF || soi[1] != 0xD8 {
		return orientNormal
	}

	for {
		var marker [2]byte
		if _, err := io.ReadFull(r, marker[:]); err != nil {
			return orientNormal
		}
		if marker[0] != 0xFF {
			return orientNormal
		}
		for marker[1] == 0xFF {
			if _, err := io.ReadFull(r, marker[1:]); err != nil {
				return orientNormal
			}
		}

		var lenBuf [2]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return orientNormal
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf[:])) - 2
		if segLen < 0 {
			return orientNormal
		}

		if marker[1] == 0xE1 {
			return parseAPP1(r, segLen)
		}
		if marker[1] == 0xDA {
			return orientNormal
		}
		if _, err := r.Seek(int64(segLen), io.SeekCurrent); err != nil {
			return orientNormal
		}
	}
}

func parseAPP1(r io.ReadSeeker, segLen int) orientation {
	if segLen < 14 {
		return orientNormal
	}
	data := make([]byte, segLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return orientNormal
	}
	if len(data) < 6 || string(data[:4]) != "Exif" || data[4] != 0 || data[5] != 0 {
		return orientNormal
	}

	tiff := data[6:]
	if len(tiff) < 8 {
		return orientNormal
	}

	var bo binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return orientNormal
	}
	if bo.Uint16(tiff[2:4]) != 42 {
		return orientNormal
	}

	ifdOffset := int(bo.Uint32(tiff[4:8]))
	if ifdOffset < 8 || ifdOffset+2 > len(tiff) {
		return orientNormal
	}
	entryCount := int(bo.Uint16(tiff[ifdOffset : ifdOffset+2]))
	ifdOffset += 2

	for i := 0; i < entryCount; i++ {
		entryOff := ifdOffset + i*12
		if entryOff+12 > len(tiff) {
			break
		}
		tag := bo.Uint16(tiff[entryOff : entryOff+2])
		if tag == 0x0112 {
			dataType := bo.Uint16(tiff[entryOff+2 : entryOff+4])
			if dataType != 3 {
				return orientNormal
			}
			val := bo.Uint16(tiff[entryOff+8 : entryOff+10])
			if val >= 1 && val <= 8 {
				return orientation(val)
			}
			return orientNormal
		}
	}
	return orientNormal
}

// applyOrientation rotates/flips img so its visual orientation matches
// orientNormal, producing a new image when a transform is needed.
func applyOrientation(img *image.NRGBA, o orientation) *image.NRGBA {
	switch o {
	case orientNormal, 0:
		return img
	case orientFlipH:
		return flipNRGBAHorizontal(img)
	case orientRotate180:
		return rotateNRGBA180(img)
	case orientFlipV:
		return flipNRGBAVertical(img)
	case orientTranspose:
		return flipNRGBAHorizontal(rotateNRGBA90CW(img))
	case orientRotate90CW:
		return rotateNRGBA90CW(img)
	case orientTransverse:
		return flipNRGBAHorizontal(rotateNRGBA270CW(img))
	case orientRotate270CW:
		return rotateNRGBA270CW(img)
	default:
		return img
	}
}
