package encoding

import "image"

// DecodeAVIF decodes AVIF-encoded bytes into pixels using whichever AVIF
// encoder implementation this build links (avif_cgo.go with cgo, the
// always-erroring avif_stub.go without). Exposed as a package function
// because the root package's decoder needs to decode arbitrary AVIF input
// files, not just candidates this engine itself produced.
func DecodeAVIF(data []byte) (image.Image, error) {
	enc, err := Get("avif")
	if err != nil {
		return nil, err
	}
	return enc.Decode(data)
}
