package genai

import (
	"fmt"
	"strings"
)

// DescribeInstruction is the vision prompt used to turn the base character
// image into a drawing-ready description.
const DescribeInstruction = "Describe this character in detail, focusing on physical appearance (hair, eyes, clothes, colors), art style, and key features so that an artist can draw it exactly the same. Keep it concise but descriptive."

// DefaultCharacterDescription is used when the vision step fails or no
// character image is available.
const DefaultCharacterDescription = "A cute mascot character."

// BuildStampPrompt composes the image-generation prompt for one sticker.
func BuildStampPrompt(characterDescription, caption, stylePrompt string) string {
	description := strings.TrimSpace(characterDescription)
	if description == "" {
		description = DefaultCharacterDescription
	}

	var b strings.Builder
	b.WriteString("Create a LINE sticker/stamp illustration of a character.\n\n")
	b.WriteString("Character Description:\n")
	b.WriteString(description)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Action/Pose/Emotion based on this text: %q\n\n", caption)
	b.WriteString("Style:\n")
	if style := strings.TrimSpace(stylePrompt); style != "" {
		b.WriteString(style)
		b.WriteString("\n")
	}
	b.WriteString("Vector art, clean lines, white background, suitable for a sticker.")
	return b.String()
}
