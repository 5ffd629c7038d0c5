package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // GIF decode support
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decode support
)

// ErrNotImage is returned by Inspect for files that are not a supported
// raster image (videos included).
var ErrNotImage = errors.New("media: not a supported image")

// ImageInfo describes a downloaded creative.
type ImageInfo struct {
	ContentType string
	Format      string
	Width       int
	Height      int
}

// DetectContentType sniffs the leading bytes of a file.
func DetectContentType(data []byte) string {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(data) >= 8 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G' {
		return "image/png"
	}
	if len(data) >= 6 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F' {
		return "image/gif"
	}
	if len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return "image/webp"
	}
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		return "video/mp4"
	}
	return "application/octet-stream"
}

// ExtensionForContentType maps a sniffed content type to a file extension.
func ExtensionForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	default:
		return ".bin"
	}
}

// Inspect reads the header of a local creative and returns its real type
// and dimensions.
func Inspect(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]

	info := &ImageInfo{ContentType: DetectContentType(head)}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return info, fmt.Errorf("%w: %s", ErrNotImage, info.ContentType)
	}
	info.Format = format
	info.Width = cfg.Width
	info.Height = cfg.Height
	return info, nil
}

// MakeThumbnail writes a copy of src scaled to maxWidth, keeping the aspect
// ratio. Images already narrower are re-encoded at their own size. PNG and
// GIF sources produce PNG; everything else produces JPEG.
func MakeThumbnail(src, dst string, maxWidth int) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	data, err := resizeImage(img, maxWidth, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func resizeImage(img image.Image, maxWidth int, format string) ([]byte, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if maxWidth > 0 && width > maxWidth {
		newWidth = maxWidth
		newHeight = int(float64(height) * float64(maxWidth) / float64(width))
		if newHeight < 1 {
			newHeight = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png", "gif":
		if err := png.Encode(&buf, dst); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// ThumbnailFormatExt returns the extension MakeThumbnail will produce for
// a source file extension.
func ThumbnailFormatExt(srcExt string) string {
	switch srcExt {
	case ".png", ".gif":
		return ".png"
	default:
		return ".jpg"
	}
}
