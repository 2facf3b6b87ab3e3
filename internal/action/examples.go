package action

import "math/rand/v2"

var imageExamples = []string{
	"Minimalist 3D isometric chart showing upward trend, clay render style, soft pastel background, high resolution.",
	"Photorealistic flat lay of a creative workspace: open laptop, black coffee, notebook, natural sunlight, 4k.",
	"Futuristic abstract background with glowing connected data nodes, dark blue and violet gradient, cybernetic aesthetic.",
	"Vibrant YouTube thumbnail background, high contrast yellow and black, bold geometric shapes, expressive style.",
	"Whimsical cartoon illustration of a content creator at a desk, lo-fi hip hop aesthetic, warm cozy lighting, detailed vector art.",
	"Vintage 1950s travel poster style for 'Remote Work', textured paper effect, retro typography, teal and orange color palette.",
	"Abstract fluid art representing digital connectivity, swirling liquid colors, gold foil accents, marble texture, high elegance.",
}

// ImageExamples returns the sample prompts offered by the image generator.
func ImageExamples() []string {
	out := make([]string, len(imageExamples))
	copy(out, imageExamples)
	return out
}

// RandomImageExample picks one sample prompt. A nil source uses the global
// generator.
func RandomImageExample(r *rand.Rand) string {
	if r == nil {
		return imageExamples[rand.IntN(len(imageExamples))]
	}
	return imageExamples[r.IntN(len(imageExamples))]
}
