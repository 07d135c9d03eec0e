// Package catalog supplies the calculator form's option space: field ranges,
// steps, defaults and the selectable loan terms. The data is read-only
// reference material; nothing a user submits is ever written back.
package catalog

import (
	"context"

	"autoloan/internal/core"
)

// PresetReader is the port the HTTP layer reads form presets through.
type PresetReader interface {
	Presets(ctx context.Context) (core.Presets, error)
}
