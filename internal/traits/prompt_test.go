package traits

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptBuilder_Default(t *testing.T) {
	pb, err := NewPromptBuilder("")
	require.NoError(t, err)

	out, err := pb.Render(testFramework(t), "Roofing")
	require.NoError(t, err)

	assert.Contains(t, out, "Analyze this Roofing ad image")
	assert.Contains(t, out, `"Color Scheme"`)
	assert.Contains(t, out, `"Bright", "Muted", "Dark"`)
	assert.Contains(t, out, `"Headline (Hook Text)": the exact text shown in the image`)
	assert.Contains(t, out, "JSON object")
}

func TestPromptBuilder_EmptyCategory(t *testing.T) {
	pb, err := NewPromptBuilder("")
	require.NoError(t, err)

	out, err := pb.Render(testFramework(t), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Analyze this creative ad image")
}

func TestLoadPromptBuilder_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.liquid")
	tpl := "{{ category }}:{% for c in categories %} {{ c.name | quote }}{% endfor %}"
	require.NoError(t, os.WriteFile(path, []byte(tpl), 0644))

	pb, err := LoadPromptBuilder(path)
	require.NoError(t, err)

	out, err := pb.Render(testFramework(t), "Solar")
	require.NoError(t, err)
	assert.Equal(t, `Solar: "Color Scheme" "People" "Headline (Hook Text)"`, out)
}

func TestNewPromptBuilder_BadTemplate(t *testing.T) {
	_, err := NewPromptBuilder("{% for c in categories %}")
	assert.Error(t, err)
}
