package pdfops

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"worktoolkit/internal/logging"
)

// recompressImages walks the document's object table and replaces oversized
// image streams with a JPEG re-encode at the configured quality. Pixel
// dimensions are never touched. Any per-image failure leaves that image
// unmodified; it never fails the group. Returns the number of streams
// replaced.
func recompressImages(pdfCtx *model.Context, opts ImageOptions, logger *slog.Logger) int {
	minBytes := opts.MinKB * 1024
	replaced := 0

	size := 0
	if pdfCtx.XRefTable.Size != nil {
		size = *pdfCtx.XRefTable.Size
	}
	for objNr := 1; objNr < size; objNr++ {
		entry, ok := pdfCtx.XRefTable.Table[objNr]
		if !ok || entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, ok := sd.Dict["Subtype"].(types.Name); !ok || subtype.Value() != "Image" {
			continue
		}
		if len(sd.Raw) < minBytes {
			continue
		}

		src, err := decodeImageStream(&sd)
		if err != nil {
			logger.Debug("image left as-is", logging.Int("obj", objNr), logging.Error(err))
			continue
		}
		encoded, colorSpace, err := encodeJPEG(src, opts.Quality)
		if err != nil {
			logger.Debug("image left as-is", logging.Int("obj", objNr), logging.Error(err))
			continue
		}
		if !shouldReplace(len(sd.Raw), len(encoded), opts.OnlyIfSmaller) {
			continue
		}

		applyJPEGStream(&sd, encoded, colorSpace)
		entry.Object = sd
		replaced++
	}
	return replaced
}

// shouldReplace is the size gate: a recompressed stream only displaces the
// original when it is strictly smaller, unless the gate is relaxed.
func shouldReplace(origLen, newLen int, onlyIfSmaller bool) bool {
	if !onlyIfSmaller {
		return true
	}
	return newLen < origLen
}

// decodeImageStream turns an image XObject into a pixel buffer. DCT streams
// decode directly; flate (or stored) streams are decoded and interpreted as
// raw 8-bit DeviceRGB or DeviceGray samples. Everything else is reported as
// unsupported so the caller skips the image.
func decodeImageStream(sd *types.StreamDict) (image.Image, error) {
	switch lastFilter(sd) {
	case "DCTDecode":
		return jpeg.Decode(bytes.NewReader(sd.Raw))
	case "", "FlateDecode":
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("decode stream: %w", err)
		}
		return imageFromSamples(sd.Dict, sd.Content)
	default:
		return nil, fmt.Errorf("unsupported image filter %q", lastFilter(sd))
	}
}

func lastFilter(sd *types.StreamDict) string {
	if len(sd.FilterPipeline) == 0 {
		return ""
	}
	return sd.FilterPipeline[len(sd.FilterPipeline)-1].Name
}

// imageFromSamples interprets decoded stream bytes as packed 8-bit samples.
func imageFromSamples(d types.Dict, samples []byte) (image.Image, error) {
	width := dictInt(d, "Width")
	height := dictInt(d, "Height")
	if width <= 0 || height <= 0 {
		return nil, errors.New("missing pixel dimensions")
	}
	if bpc := dictInt(d, "BitsPerComponent"); bpc != 8 {
		return nil, fmt.Errorf("unsupported bits per component %d", bpc)
	}
	cs, ok := d["ColorSpace"].(types.Name)
	if !ok {
		return nil, errors.New("indirect or composite color space")
	}

	switch cs.Value() {
	case "DeviceRGB":
		if len(samples) < width*height*3 {
			return nil, errors.New("sample buffer shorter than declared dimensions")
		}
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				s := (y*width + x) * 3
				p := img.PixOffset(x, y)
				img.Pix[p+0] = samples[s+0]
				img.Pix[p+1] = samples[s+1]
				img.Pix[p+2] = samples[s+2]
				img.Pix[p+3] = 0xff
			}
		}
		return img, nil
	case "DeviceGray":
		if len(samples) < width*height {
			return nil, errors.New("sample buffer shorter than declared dimensions")
		}
		img := image.NewGray(image.Rect(0, 0, width, height))
		copy(img.Pix, samples[:width*height])
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported color space %q", cs.Value())
	}
}

func dictInt(d types.Dict, key string) int {
	if v, ok := d[key].(types.Integer); ok {
		return int(v)
	}
	return 0
}

// encodeJPEG re-encodes a pixel buffer at the requested quality. Grayscale
// input stays single-channel; everything else (including CMYK-family decodes)
// is flattened to RGB first, so a replaced stream is always a plain 1- or
// 3-channel JPEG.
func encodeJPEG(src image.Image, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	colorSpace := "DeviceRGB"

	switch img := src.(type) {
	case *image.Gray:
		colorSpace = "DeviceGray"
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", err
		}
	default:
		bounds := src.Bounds()
		rgba := image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, src, bounds.Min, draw.Src)
		if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", err
		}
	}
	return buf.Bytes(), colorSpace, nil
}

// applyJPEGStream swaps the stream bytes for the JPEG encoding and rewrites
// the stream dictionary accordingly. Width and Height are left untouched.
func applyJPEGStream(sd *types.StreamDict, encoded []byte, colorSpace string) {
	sd.Raw = encoded
	sd.Content = nil
	length := int64(len(encoded))
	sd.StreamLength = &length
	sd.FilterPipeline = []types.PDFFilter{{Name: "DCTDecode"}}
	sd.Dict["Filter"] = types.Name("DCTDecode")
	sd.Dict["ColorSpace"] = types.Name(colorSpace)
	sd.Dict["BitsPerComponent"] = types.Integer(8)
	sd.Dict["Length"] = types.Integer(len(encoded))
	delete(sd.Dict, "DecodeParms")
}
