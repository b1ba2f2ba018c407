// Package preprocess turns arbitrary image bytes into the normalized NCHW
// float32 tensor the classification network expects.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Fixed network input geometry.
const (
	ImageWidth  = 224
	ImageHeight = 224
	Channels    = 3
)

// ImageNet dataset statistics used for per-channel normalization.
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Tensor is a fixed-shape numeric buffer in (batch, channel, row, column)
// layout. FromBytes always produces shape (1, 3, ImageHeight, ImageWidth).
type Tensor struct {
	Data  []float32
	Shape []int64
}

// FromBytes decodes an image (format auto-detected), stretches it to exactly
// ImageWidth×ImageHeight with Lanczos resampling, and writes normalized
// channel-first float32 values. Aspect ratio is not preserved.
func FromBytes(b []byte) (*Tensor, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, ErrInvalidImage(fmt.Sprintf("decode image from bytes: %v", err))
	}

	resized := resize.Resize(ImageWidth, ImageHeight, img, resize.Lanczos3)

	data := make([]float32, Channels*ImageHeight*ImageWidth)
	bounds := resized.Bounds()
	for y := 0; y < ImageHeight; y++ {
		for x := 0; x < ImageWidth; x++ {
			r, g, b16, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit channels; reduce to 8-bit before scaling to [0,1].
			px := y*ImageWidth + x
			data[px] = (float32(r>>8)/255.0 - imagenetMean[0]) / imagenetStd[0]
			data[ImageHeight*ImageWidth+px] = (float32(g>>8)/255.0 - imagenetMean[1]) / imagenetStd[1]
			data[2*ImageHeight*ImageWidth+px] = (float32(b16>>8)/255.0 - imagenetMean[2]) / imagenetStd[2]
		}
	}

	return &Tensor{
		Data:  data,
		Shape: []int64{1, Channels, ImageHeight, ImageWidth},
	}, nil
}
