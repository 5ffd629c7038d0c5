package traits

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply      string
	err        error
	prompts    []string
	mediaTypes []string
}

func (f *fakeModel) Describe(ctx context.Context, prompt string, image []byte, mediaType string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.mediaTypes = append(f.mediaTypes, mediaType)
	return f.reply, f.err
}

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

func newTestClassifier(t *testing.T, model VisionModel) *Classifier {
	t.Helper()
	c, err := NewClassifier(testFramework(t), nil, model)
	require.NoError(t, err)
	return c
}

func TestClassify_ProseWrappedReply(t *testing.T) {
	model := &fakeModel{reply: "Sure! Here is the analysis:\n" +
		`{"Color Scheme": "Muted", "People": "Yes", "Headline (Hook Text)": "Stop overpaying"}` +
		"\nLet me know if you need more."}
	c := newTestClassifier(t, model)

	got, err := c.Classify(context.Background(), jpegBytes, "image/jpeg", "Roofing")
	require.NoError(t, err)
	assert.Equal(t, "Muted", got["Color Scheme"])
	assert.Equal(t, "Stop overpaying", got["Headline (Hook Text)"])

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Roofing")
	assert.Equal(t, []string{"image/jpeg"}, model.mediaTypes)
}

func TestClassify_InvalidOption(t *testing.T) {
	model := &fakeModel{reply: `{"Color Scheme": "Extreme", "People": "Yes", "Headline (Hook Text)": ""}`}
	c := newTestClassifier(t, model)

	got, err := c.Classify(context.Background(), jpegBytes, "image/jpeg", "Roofing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrValidation)

	var cerr *ClassificationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, StageValidate, cerr.Stage)
}

func TestClassify_Failures(t *testing.T) {
	tests := []struct {
		name      string
		model     *fakeModel
		mediaType string
		stage     Stage
	}{
		{"model error", &fakeModel{err: errors.New("throttled")}, "image/jpeg", StageModel},
		{"no json", &fakeModel{reply: "I cannot see the image."}, "image/jpeg", StageExtract},
		{"bad json", &fakeModel{reply: `{"Color Scheme": Muted}`}, "image/jpeg", StageDecode},
		{"video", &fakeModel{reply: "{}"}, "video/mp4", StageInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(t, tt.model)

			_, err := c.Classify(context.Background(), jpegBytes, tt.mediaType, "Roofing")
			var cerr *ClassificationError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.stage, cerr.Stage)
		})
	}
}

func TestClassifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ad.jpg")
	require.NoError(t, os.WriteFile(path, jpegBytes, 0644))

	model := &fakeModel{reply: `{"Color Scheme": "Dark", "People": "No", "Headline (Hook Text)": ""}`}
	c := newTestClassifier(t, model)

	got, err := c.ClassifyFile(context.Background(), path, "Solar")
	require.NoError(t, err)
	assert.Equal(t, "Dark", got["Color Scheme"])
	assert.Equal(t, []string{"image/jpeg"}, model.mediaTypes)

	_, err = c.ClassifyFile(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"), "Solar")
	assert.Error(t, err)
}

func TestClassifyCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ad.jpg")
	require.NoError(t, os.WriteFile(path, jpegBytes, 0644))

	model := &fakeModel{reply: `{"People": "Yes"}`}
	c := newTestClassifier(t, model)

	got, err := c.ClassifyCategories(context.Background(), path, "Bath", []string{"People"})
	require.NoError(t, err)
	assert.Equal(t, Assignment{"People": "Yes"}, got)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], `"People"`)
	assert.NotContains(t, model.prompts[0], "Color Scheme")
}

func TestClassifyCategories_ReplyMustMatchSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ad.jpg")
	require.NoError(t, os.WriteFile(path, jpegBytes, 0644))

	c := newTestClassifier(t, &fakeModel{reply: `{"People": "Yes", "Color Scheme": "Dark"}`})
	_, err := c.ClassifyCategories(context.Background(), path, "Bath", []string{"People"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = c.ClassifyCategories(context.Background(), path, "Bath", []string{"Mood"})
	var cerr *ClassificationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, StagePrompt, cerr.Stage)
	assert.ErrorIs(t, err, ErrInvalidFramework)
}
