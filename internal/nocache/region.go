package nocache

import (
	"maps"
)

// RegionType tells a renderer how to interpret a region's contents.
type RegionType string

const (
	// RegionString regions carry their template source inline.
	RegionString RegionType = "string"
	// RegionView regions name a view known to the renderer.
	RegionView RegionType = "view"
)

func (t RegionType) valid() bool {
	return t == RegionString || t == RegionView
}

// Region is one dynamic fragment of a page, captured while the page renders.
// Context only holds the values that differ from the cascade at push time.
type Region struct {
	Name      string         `json:"name"`
	Type      RegionType     `json:"type"`
	Contents  string         `json:"contents"`
	Extension string         `json:"extension"`
	Context   map[string]any `json:"context"`
}

// FragmentData merges the region context over cascade. Context values win.
func (r *Region) FragmentData(cascade map[string]any) map[string]any {
	data := make(map[string]any, len(cascade)+len(r.Context))
	maps.Copy(data, cascade)
	maps.Copy(data, r.Context)
	return data
}

// Fragment prepares the region for rendering against cascade.
func (r *Region) Fragment(cascade map[string]any) *Fragment {
	return &Fragment{Region: r, Data: r.FragmentData(cascade)}
}
