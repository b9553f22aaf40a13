package assets

import (
	"embed"
)

// FS is served under /fs/.
//
//go:embed fs/*
var FS embed.FS

//go:embed templates/*
var Templates embed.FS

// FeaturesYAML seeds the builtin store and `brochureadmin db init`.
//
//go:embed features.yaml
var FeaturesYAML []byte
