package terra

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/terra/utils"
	"golang.org/x/image/bmp"
)

// decodeImg decodes an image file to type image.Image, rejecting any file
// whose sniffed content type isn't an image.
func decodeImg(src string) (image.Image, error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("could not open the source file: %v", err)
	}
	defer file.Close()

	ctype, err := utils.DetectFileContentType(file.Name())
	if err != nil {
		return nil, err
	}
	if !strings.Contains(ctype.(string), "image") {
		return nil, fmt.Errorf("the source should be an image file")
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode the source file: %v", err)
	}
	return img, nil
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := srcBounds.Dx() * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
			}
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}

// LoadSourceHeightField decodes an image file and converts it to a height
// field via luminance-weighted grayscale, scaled by the quantization
// factor q (the CLI's -q flag): height = luminance/255 * q. If maxDim is
// positive and the source exceeds it on either axis, the source is
// downscaled first with a Lanczos filter, preserving aspect ratio.
func LoadSourceHeightField(path string, q float32, maxDim int) (*HeightField, error) {
	img, err := decodeImg(path)
	if err != nil {
		return nil, err
	}
	img = downscaleToFit(img, maxDim)
	src := imgToNRGBA(img)
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	hf := NewHeightField(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535
			hf.Set(x, y, float32(lum)*q)
		}
	}
	return hf, nil
}

// downscaleToFit resizes img with a Lanczos filter so neither dimension
// exceeds maxDim, preserving aspect ratio. maxDim <= 0 or an
// already-small image is returned unchanged.
func downscaleToFit(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	if w >= h {
		return imaging.Resize(img, maxDim, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDim, imaging.Lanczos)
}

// heightFieldToGrayscaleImage renders a height field as an 8-bit grayscale
// debug PNG, clamping to [0,1] before scaling to the byte range.
func heightFieldToGrayscaleImage(h *HeightField) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, h.W, h.H))
	for y := 0; y < h.H; y++ {
		for x := 0; x < h.W; x++ {
			v := h.At(x, y)
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			g := uint8(v * 255)
			dst.SetNRGBA(x, y, color.NRGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return dst
}

// normalFieldToImage renders a normal field as an RGB-encoded debug PNG
// using the (n+1)/2*255 mapping.
func normalFieldToImage(n *PlanarNormalField) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, n.W, n.H))
	encode := func(v float32) uint8 {
		u := (v + 1) * 0.5
		if u < 0 {
			u = 0
		}
		if u > 1 {
			u = 1
		}
		return uint8(u * 255)
	}
	for i := 0; i < n.W*n.H; i++ {
		x, y := i%n.W, i/n.W
		dst.SetNRGBA(x, y, color.NRGBA{
			R: encode(n.Nx[i]), G: encode(n.Ny[i]), B: encode(n.Nz[i]), A: 255,
		})
	}
	return dst
}

// WorkingBufferToRGBA packs the three height planes of a working buffer
// into an RGBA8 image: each plane, clamped to [0,1], becomes one of R/G/B,
// alpha fixed opaque.
// This is the buffer returned by stack_end (§6.1).
func WorkingBufferToRGBA(b *WorkingBuffer) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	toByte := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			dst.SetNRGBA(x, y, color.NRGBA{
				R: toByte(b.Planes[0].At(x, y)),
				G: toByte(b.Planes[1].At(x, y)),
				B: toByte(b.Planes[2].At(x, y)),
				A: 255,
			})
		}
	}
	return dst
}

// SaveImage writes img to path, the format chosen from path's extension
// (png/jpg/jpeg/bmp; a path with no extension is written as PNG, any other
// extension is rejected with an error). Used by the CLI front end to
// write the final stack_end output and by debug exporters for ad hoc
// paths.
func SaveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %v", err)
	}
	defer f.Close()
	return encodeImg(f, img)
}

// encodeImg encodes an image to a destination of type io.Writer, the
// format chosen from the writer's file extension when it is an *os.File
// (png/jpg/jpeg/bmp), defaulting to PNG for any other writer.
func encodeImg(w io.Writer, img image.Image) error {
	if f, ok := w.(*os.File); ok {
		switch filepath.Ext(f.Name()) {
		case ".jpg", ".jpeg":
			return jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
		case ".bmp":
			return bmp.Encode(f, img)
		case "", ".png":
			return png.Encode(f, img)
		default:
			return errors.New("unsupported image format")
		}
	}
	return png.Encode(w, img)
}
