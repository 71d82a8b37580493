// Package web embeds the single-page frontend served by the apiserver.
package web

import "embed"

//go:embed static
var Static embed.FS
