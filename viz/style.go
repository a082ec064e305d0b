package viz

// Style collects every visual choice the renderer makes, so callers can restyle a diagram without touching the
// rendering algorithm.
type Style struct {
	Place            NodeStyle `yaml:"place"`
	Transition       NodeStyle `yaml:"transition"`
	Substitution     NodeStyle `yaml:"substitution"`
	Arc              EdgeStyle `yaml:"arc"`
	SubstitutionLink EdgeStyle `yaml:"substitutionLink"`
	FusionLink       EdgeStyle `yaml:"fusionLink"`
	// FusionColors fill the places of each fusion class, cycling when there are more classes than colours.
	FusionColors []string `yaml:"fusionColors"`
	// ShowFusion adds fusion edges and colours.
	ShowFusion bool `yaml:"showFusion"`
}

// DefaultStyle draws places as light blue circles, ordinary transitions as grey boxes and substitution transitions as
// orange boxes. Substitution links are dashed and fusion links dotted.
func DefaultStyle() Style {
	return Style{
		Place:            NodeStyle{Shape: Circle, Color: "black", FillColor: "lightblue"},
		Transition:       NodeStyle{Shape: Box, Color: "black", FillColor: "lightgrey"},
		Substitution:     NodeStyle{Shape: Box, Color: "black", FillColor: "orange"},
		Arc:              EdgeStyle{Stroke: Solid, Color: "black"},
		SubstitutionLink: EdgeStyle{Stroke: Dashed, Color: "darkorange"},
		FusionLink:       EdgeStyle{Stroke: Dotted, Color: "purple", Undirected: true},
		FusionColors:     []string{"plum", "palegreen", "khaki", "lightsalmon", "lightcyan"},
		ShowFusion:       true,
	}
}

type Option func(r *renderer)

func WithStyle(s Style) Option {
	return func(r *renderer) {
		r.style = s
	}
}

// WithName names the rendered graph. The default is "hcpn".
func WithName(name string) Option {
	return func(r *renderer) {
		r.name = name
	}
}

// WithoutFusion leaves fusion annotations out of the graph.
func WithoutFusion() Option {
	return func(r *renderer) {
		r.style.ShowFusion = false
	}
}
