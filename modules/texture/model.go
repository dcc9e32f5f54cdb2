package texture

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Texture ids matching the client's texture library
const (
	TextureLinen    = "linen"
	TextureConcrete = "concrete"
	TextureMetal    = "metal"
	TextureOak      = "oak"
)

// texturePrompts - texture id → material description for the enhancer
var texturePrompts = map[string]string{
	TextureLinen:    "natural linen weave with visible thread texture",
	TextureConcrete: "raw concrete surface with fine grain and subtle pores",
	TextureMetal:    "brushed metal with directional micro-scratches and soft specular highlights",
	TextureOak:      "oak wood grain with warm tone and natural ring patterns",
}

// Options - texture request fields with defaults applied
type Options struct {
	Texture  string
	Strength int
}

// ParseOptions - unknown textures and out-of-range strengths fall back to
// the defaults
func ParseOptions(r *http.Request) Options {
	opts := Options{
		Texture:  TextureLinen,
		Strength: 50,
	}

	if tex := strings.TrimSpace(r.FormValue("texture")); tex != "" {
		if _, ok := texturePrompts[tex]; ok {
			opts.Texture = tex
		}
	}

	if raw := strings.TrimSpace(r.FormValue("strength")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n <= 100 {
			opts.Strength = n
		}
	}

	return opts
}

// Prompt - micro-detail enhancement instruction
func (o Options) Prompt() string {
	level := "subtle"
	switch {
	case o.Strength >= 70:
		level = "strong"
	case o.Strength >= 40:
		level = "moderate"
	}
	return fmt.Sprintf(
		"Enhance the surface micro-detail of the input image, emphasizing %s. Apply a %s enhancement, preserve the original shape, colors and composition, photorealistic output.",
		texturePrompts[o.Texture], level)
}
