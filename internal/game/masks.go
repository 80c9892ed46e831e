package game

import "github.com/valyala/fastrand"

// maskCatalog lists the built-in mask images the frontend serves from
// /masks/. One is assigned per round when the preview phase starts. The
// names must match the asset files the frontend actually ships; an entry
// missing there shows up as a broken image on every screen.
var maskCatalog = []string{
	"mask1.png",
	"mask2.png",
	"mask3.png",
	"mask4.png",
	"mask5.png",
	"mask6.png",
}

func pickMask() string {
	return maskCatalog[fastrand.Uint32n(uint32(len(maskCatalog)))]
}
