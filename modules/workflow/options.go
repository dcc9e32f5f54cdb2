package workflow

import "strconv"

// Options - workflow-specific fields attached to a generate request
type Options interface {
	Fields() map[string]string
}

// WhiteLabelOptions - background normalization (White-Label Hub)
type WhiteLabelOptions struct {
	BackgroundStyle string
	ShadowIntensity int
	Format          string
}

func (o WhiteLabelOptions) Fields() map[string]string {
	fields := map[string]string{
		"backgroundStyle": o.BackgroundStyle,
		"shadowIntensity": strconv.Itoa(o.ShadowIntensity),
	}
	if o.Format != "" {
		fields["format"] = o.Format
	}
	return fields
}

// ModelAgentOptions - virtual try-on (Model Agent)
type ModelAgentOptions struct {
	ModelType       string
	GarmentCategory string
}

func (o ModelAgentOptions) Fields() map[string]string {
	return map[string]string{
		"modelType":       o.ModelType,
		"garmentCategory": o.GarmentCategory,
	}
}

// ScenarioOptions - scene compositing (Scenario Engine)
type ScenarioOptions struct {
	Scene string
}

func (o ScenarioOptions) Fields() map[string]string {
	return map[string]string{"scene": o.Scene}
}

// TextureOptions - micro-detail enhancement (Texture Master)
type TextureOptions struct {
	Texture  string
	Strength int
}

func (o TextureOptions) Fields() map[string]string {
	return map[string]string{
		"texture":  o.Texture,
		"strength": strconv.Itoa(o.Strength),
	}
}
