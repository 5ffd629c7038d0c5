package traits

import "context"

// VisionModel answers a text prompt about one image.
type VisionModel interface {
	Describe(ctx context.Context, prompt string, image []byte, mediaType string) (string, error)
}
