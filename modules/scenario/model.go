package scenario

import (
	"net/http"
	"strings"
)

// Scene ids matching the client's scenario gallery
const (
	SceneManhattan   = "manhattan"
	SceneEuroStreet  = "euro_street"
	SceneBeachSunset = "beach_sunset"
	SceneStudioLoft  = "studio_loft"
)

// scenePrompts - scene id → environment description for the compositor
var scenePrompts = map[string]string{
	SceneManhattan:   "a busy Manhattan street at golden hour, yellow cabs and glass towers softly blurred in the background",
	SceneEuroStreet:  "a cobblestone European old-town street with pastel facades and warm cafe light",
	SceneBeachSunset: "a sandy beach at sunset, gentle waves and a warm orange sky",
	SceneStudioLoft:  "a bright industrial studio loft with large windows, concrete floor and soft daylight",
}

// Options - scenario request fields with defaults applied
type Options struct {
	Scene string
}

// ParseOptions - unknown scenes fall back to the default gallery entry
func ParseOptions(r *http.Request) Options {
	opts := Options{Scene: SceneManhattan}
	if scene := strings.TrimSpace(r.FormValue("scene")); scene != "" {
		if _, ok := scenePrompts[scene]; ok {
			opts.Scene = scene
		}
	}
	return opts
}

// Prompt - full compositing instruction for the scene
func (o Options) Prompt() string {
	return "Place the product from the input image into " + scenePrompts[o.Scene] +
		". Keep the product exactly as it is, photorealistic compositing, matching light and shadows, professional product photography."
}
