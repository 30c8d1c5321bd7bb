//go:build cgo

package encoding

/*
#cgo pkg-config: libavif
#include <stdlib.h>
#include <avif/avif.h>

const char* pyjamaz_avif_error_string(avifResult result) {
    return avifResultToString(result);
}

avifImage* pyjamaz_avif_decode(const uint8_t *data, size_t size, avifDecoder **outDecoder, avifResult *outResult) {
    avifDecoder *decoder = avifDecoderCreate();
    decoder->codecChoice = AVIF_CODEC_CHOICE_DAV1D;

    *outResult = avifDecoderSetIOMemory(decoder, data, size);
    if (*outResult != AVIF_RESULT_OK) {
        avifDecoderDestroy(decoder);
        return NULL;
    }
    *outResult = avifDecoderParse(decoder);
    if (*outResult != AVIF_RESULT_OK) {
        avifDecoderDestroy(decoder);
        return NULL;
    }
    *outResult = avifDecoderNextImage(decoder);
    if (*outResult != AVIF_RESULT_OK) {
        avifDecoderDestroy(decoder);
        return NULL;
    }
    *outDecoder = decoder;
    return decoder->image;
}
*/
import "C"

import (
	"fmt"
	"image"
	"unsafe"
)

type avifEncoder struct{}

func init() { Register(avifEncoder{}) }

func (avifEncoder) Name() string { return "avif" }

// Encode takes a raw quality in [0, 63] (lower is better, the native AVIF
// quantizer-style scale — see Format.qualityDomain and Format.normalize in
// the root package; the search engine orders probes by normalized quality).
func (avifEncoder) Encode(img *image.NRGBA, quality int) ([]byte, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("avif: invalid image dimensions %dx%d", w, h)
	}
	if quality < 0 || quality > 63 {
		return nil, fmt.Errorf("avif: quality %d out of range [0,63]", quality)
	}

	avifImg := C.avifImageCreate(C.uint32_t(w), C.uint32_t(h), 8, C.AVIF_PIXEL_FORMAT_YUV420)
	if avifImg == nil {
		return nil, fmt.Errorf("avif: failed to create image")
	}
	defer C.avifImageDestroy(avifImg)

	var rgb C.avifRGBImage
	C.avifRGBImageSetDefaults(&rgb, avifImg)
	rgb.format = C.AVIF_RGB_FORMAT_RGBA
	rgb.depth = 8
	rgb.pixels = (*C.uint8_t)(unsafe.Pointer(&img.Pix[0]))
	rgb.rowBytes = C.uint32_t(img.Stride)

	if res := C.avifImageRGBToYUV(avifImg, &rgb); res != C.AVIF_RESULT_OK {
		return nil, fmt.Errorf("avif: rgb to yuv: %s", C.GoString(C.pyjamaz_avif_error_string(res)))
	}

	encoder := C.avifEncoderCreate()
	if encoder == nil {
		return nil, fmt.Errorf("avif: failed to create encoder")
	}
	defer C.avifEncoderDestroy(encoder)

	// AVIF_QUANTIZER scale is 0 (lossless-ish) to 63 (worst); libavif's
	// quality knobs map directly onto the same native scale we accept.
	encoder.minQuantizer = C.int(quality)
	encoder.maxQuantizer = C.int(quality)
	encoder.speed = 6

	var out C.avifRWData
	res := C.avifEncoderWrite(encoder, avifImg, &out)
	if res != C.AVIF_RESULT_OK {
		return nil, fmt.Errorf("avif: encode: %s", C.GoString(C.pyjamaz_avif_error_string(res)))
	}
	defer C.avifRWDataFree(&out)

	return C.GoBytes(unsafe.Pointer(out.data), C.int(out.size)), nil
}

func (avifEncoder) Decode(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("avif: cannot decode empty data")
	}
	cData := C.CBytes(data)
	defer C.free(cData)

	var decoder *C.avifDecoder
	var result C.avifResult
	avifImg := C.pyjamaz_avif_decode((*C.uint8_t)(cData), C.size_t(len(data)), &decoder, &result)
	if avifImg == nil {
		return nil, fmt.Errorf("avif: decode: %s", C.GoString(C.pyjamaz_avif_error_string(result)))
	}
	defer C.avifDecoderDestroy(decoder)

	var rgb C.avifRGBImage
	C.avifRGBImageSetDefaults(&rgb, avifImg)
	rgb.format = C.AVIF_RGB_FORMAT_RGBA
	rgb.depth = 8

	if C.avifRGBImageAllocatePixels(&rgb) != C.AVIF_RESULT_OK {
		return nil, fmt.Errorf("avif: failed to allocate rgb pixels")
	}
	defer C.avifRGBImageFreePixels(&rgb)

	if res := C.avifImageYUVToRGB(avifImg, &rgb); res != C.AVIF_RESULT_OK {
		return nil, fmt.Errorf("avif: yuv to rgb: %s", C.GoString(C.pyjamaz_avif_error_string(res)))
	}

	width := int(avifImg.width)
	height := int(avifImg.height)
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	rowBytes := int(rgb.rowBytes)
	for y := 0; y < height; y++ {
		srcPtr := unsafe.Add(unsafe.Pointer(rgb.pixels), y*rowBytes)
		dstOff := y * img.Stride
		copy(img.Pix[dstOff:dstOff+4*width], unsafe.Slice((*byte)(srcPtr), 4*width))
	}
	return img, nil
}
