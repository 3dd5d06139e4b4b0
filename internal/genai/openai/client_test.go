package openai

import (
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "", "")
	assert.Error(t, err)

	client, err := NewClient("key", "", "")
	assert.NoError(t, err)
	assert.Equal(t, defaultVisionModel, client.visionModel)
	assert.Equal(t, defaultImageModel, client.imageModel)
}

func TestDataURL(t *testing.T) {
	url := dataURL([]byte{0x01, 0x02}, "image/jpeg")
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))

	url = dataURL([]byte{0x01}, "")
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestSizeForAspectRatio(t *testing.T) {
	assert.Equal(t, openai.CreateImageSize1024x1024, sizeForAspectRatio("1:1"))
	assert.Equal(t, openai.CreateImageSize1024x1024, sizeForAspectRatio(""))
	assert.Equal(t, openai.CreateImageSize1792x1024, sizeForAspectRatio("16:9"))
	assert.Equal(t, openai.CreateImageSize1024x1792, sizeForAspectRatio("9:16"))
}
