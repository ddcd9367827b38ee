// Package web embeds the static chat page served at the site root.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// GetFileSystem returns the embedded file system for the static chat UI.
func GetFileSystem() (http.FileSystem, error) {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(subFS), nil
}
