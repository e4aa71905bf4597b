package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/voxpopuly/voxpopuly-api/internal/storage"
)

// LogoSize is the bounding box, in pixels, slate logos are fitted into
const LogoSize = 256

// ImageService handles image processing for uploaded logos
type ImageService struct {
	size int
}

func NewImageService() *ImageService {
	return &ImageService{size: LogoSize}
}

// NormalizeLogo decodes a PNG or JPEG image, fits it into the logo box
// keeping its aspect ratio and re-encodes it as PNG
func (s *ImageService) NormalizeLogo(r io.Reader) ([]byte, error) {
	limited := io.LimitReader(r, int64(storage.MaxLogoSize)+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("error al leer imagen: %w", err)
	}
	if int64(len(raw)) > int64(storage.MaxLogoSize) {
		return nil, errors.New("la imagen supera el tamaño máximo de 10 MB")
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.New("formato de imagen no soportado (solo JPG/PNG)")
	}
	if format != "png" && format != "jpeg" {
		return nil, errors.New("formato de imagen no soportado (solo JPG/PNG)")
	}

	bounds := img.Bounds()
	if bounds.Dx() > s.size || bounds.Dy() > s.size {
		img = imaging.Fit(img, s.size, s.size, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("error al codificar imagen: %w", err)
	}
	return buf.Bytes(), nil
}
