// Package web embeds the browser page that captures speech and calls the
// relay endpoint.
package web

import "embed"

//go:embed index.html app.js
var Assets embed.FS
