// Package id generates prefixed identifiers for saved media items.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ItemPrefix prefixes every media item id.
const ItemPrefix = "med"

// Generate creates a prefixed unique ID using NanoID, e.g. "med-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Item generates a media item id.
func Item() (string, error) {
	return Generate(ItemPrefix)
}
