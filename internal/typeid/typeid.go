package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixElement = "el"
	PrefixAsset   = "asset"
	PrefixDesign  = "design"
	PrefixBitmap  = "bmp"
)

// New returns a typeid with the given prefix. The suffix is a UUIDv7, so ids
// generated in sequence sort in creation order.
func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewElementID() string { return New(PrefixElement) }
func NewAssetID() string   { return New(PrefixAsset) }
func NewDesignID() string  { return New(PrefixDesign) }
func NewBitmapID() string  { return New(PrefixBitmap) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
