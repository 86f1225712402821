package app

import (
	"embed"
	"io/fs"
)

//go:embed web
var webFiles embed.FS

// webAssets holds the pages served by the web and register debug tools.
var webAssets = mustSub(webFiles, "web")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
