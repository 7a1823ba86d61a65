// Package data embeds the demo data loaded when SEED_DATA is set
package data

import (
	_ "embed"
)

// Seed holds the demo properties, profiles and documents
//
//go:embed seed/seed.json
var Seed []byte
