package traits

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ignite/creative-catalog/internal/media"
)

// Stage names the classification step that failed.
type Stage string

const (
	StagePrompt   Stage = "prompt"
	StageModel    Stage = "model"
	StageExtract  Stage = "extract"
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
	StageInput    Stage = "input"
)

// ClassificationError wraps any failure to classify one image. Callers
// treat it as "no traits" for that record and move on.
type ClassificationError struct {
	Stage Stage
	Err   error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify (%s): %v", e.Stage, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// supported media types for inline images
var visionMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Classifier assigns framework traits to ad images.
type Classifier struct {
	framework *Framework
	prompts   *PromptBuilder
	model     VisionModel
}

// NewClassifier builds a classifier. A nil prompts uses the default template.
func NewClassifier(fw *Framework, prompts *PromptBuilder, model VisionModel) (*Classifier, error) {
	if prompts == nil {
		var err error
		if prompts, err = NewPromptBuilder(""); err != nil {
			return nil, err
		}
	}
	return &Classifier{framework: fw, prompts: prompts, model: model}, nil
}

// Framework returns the framework assignments are validated against.
func (c *Classifier) Framework() *Framework { return c.framework }

// Classify returns a validated assignment for image. Every failure is a
// *ClassificationError.
func (c *Classifier) Classify(ctx context.Context, image []byte, mediaType, category string) (Assignment, error) {
	return c.classify(ctx, c.framework, image, mediaType, category)
}

// ClassifyFile reads a local image and classifies it.
func (c *Classifier) ClassifyFile(ctx context.Context, path, category string) (Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ClassificationError{Stage: StageInput, Err: err}
	}
	return c.Classify(ctx, data, media.DetectContentType(data), category)
}

// ClassifyCategories classifies a local image for the named categories
// only. The prompt lists just those and the reply must assign exactly them,
// so the result can be added to an earlier assignment.
func (c *Classifier) ClassifyCategories(ctx context.Context, path, category string, names []string) (Assignment, error) {
	sub, err := c.framework.Subset(names)
	if err != nil {
		return nil, &ClassificationError{Stage: StagePrompt, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ClassificationError{Stage: StageInput, Err: err}
	}
	return c.classify(ctx, sub, data, media.DetectContentType(data), category)
}

func (c *Classifier) classify(ctx context.Context, fw *Framework, image []byte, mediaType, category string) (Assignment, error) {
	if !visionMediaTypes[mediaType] {
		return nil, &ClassificationError{Stage: StageInput, Err: fmt.Errorf("unsupported media type %q", mediaType)}
	}

	prompt, err := c.prompts.Render(fw, category)
	if err != nil {
		return nil, &ClassificationError{Stage: StagePrompt, Err: err}
	}

	reply, err := c.model.Describe(ctx, prompt, image, mediaType)
	if err != nil {
		return nil, &ClassificationError{Stage: StageModel, Err: err}
	}

	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return nil, &ClassificationError{Stage: StageExtract, Err: err}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, &ClassificationError{Stage: StageDecode, Err: err}
	}

	assignment, err := Validate(fw, raw)
	if err != nil {
		return nil, &ClassificationError{Stage: StageValidate, Err: err}
	}
	return assignment, nil
}
