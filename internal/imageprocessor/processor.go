package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

// ErrUnsupportedImage - данные не декодируются как jpeg или png
var ErrUnsupportedImage = errors.New("unsupported or corrupted image")

const ContentType = "image/jpeg"

// Processor приводит загруженные изображения к одному виду:
// jpeg, не больше maxWidth x maxHeight, пропорции сохраняются.
type Processor struct {
	quality   int
	maxWidth  int
	maxHeight int
}

func NewProcessor(quality, maxWidth, maxHeight int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxWidth <= 0 {
		maxWidth = 1600
	}
	if maxHeight <= 0 {
		maxHeight = 1600
	}
	return &Processor{
		quality:   quality,
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
	}
}

// Normalize декодирует изображение, при необходимости уменьшает и кодирует в jpeg
func (p *Processor) Normalize(reader io.Reader) (*bytes.Buffer, error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	out := p.fit(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return &buf, nil
}

// fit вписывает изображение в границы процессора. Маленькие не увеличиваются,
// прозрачность заливается белым (в jpeg альфы нет).
func (p *Processor) fit(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	newWidth, newHeight := width, height
	if width > p.maxWidth || height > p.maxHeight {
		ratio := float64(width) / float64(height)
		newWidth, newHeight = p.maxWidth, p.maxHeight
		if float64(p.maxWidth)/float64(p.maxHeight) > ratio {
			newWidth = int(float64(p.maxHeight) * ratio)
		} else {
			newHeight = int(float64(p.maxWidth) / ratio)
		}
		newWidth = max(newWidth, 1)
		newHeight = max(newHeight, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
