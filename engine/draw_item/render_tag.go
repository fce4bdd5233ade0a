package draw_item

// RenderTag is an opaque category key used to bucket draw items for separate draw
// scheduling. Tags are assigned to prims by the scene; the scheduler only groups by them.
type RenderTag string

// Well-known render tags. Any other string is equally valid.
const (
	TagGeometry    RenderTag = "geometry"
	TagGuide       RenderTag = "guide"
	TagProxy       RenderTag = "proxy"
	TagRender      RenderTag = "render"
	TagHidden      RenderTag = "hidden"
	TagTranslucent RenderTag = "translucent"
	TagSelection   RenderTag = "selection"
)
