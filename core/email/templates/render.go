package templates

import (
	"bytes"
	"context"
	"fmt"

	"github.com/a-h/templ"
)

// Render renders c into a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	if c == nil {
		return "", fmt.Errorf("templates: nil component")
	}
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("templates: render: %w", err)
	}
	return buf.String(), nil
}
