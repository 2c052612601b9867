package layout

import (
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

// Name identifies a layout strategy.
type Name string

// Strategy names.
const (
	NameCircular    Name = "circular"
	NameCustom      Name = "custom"
	NameForceAtlas2 Name = "force-atlas-2"
	NameFcose       Name = "fcose"
	NamePlanar      Name = "planar"
	NameMarketing   Name = "marketing"
	NameSpring      Name = "spring"
)

// Names lists every strategy name.
var Names = []Name{NameCircular, NameCustom, NameForceAtlas2, NameFcose, NamePlanar, NameMarketing, NameSpring}

// Orientation is the axis tiers are stacked along.
type Orientation string

const (
	// Vertical stacks tiers top to bottom.
	Vertical Orientation = "vertical"
	// Horizontal stacks tiers left to right.
	Horizontal Orientation = "horizontal"
)

// Quality is the fcose quality mode.
type Quality string

const (
	QualityDraft   Quality = "draft"
	QualityDefault Quality = "default"
	QualityProof   Quality = "proof"
)

// Layering is the planar layering algorithm.
type Layering string

const (
	LayeringLongestPath Layering = "longest-path"
	LayeringSimplex     Layering = "simplex"
)

// Params is implemented by every parameter struct.
type Params interface {
	LayoutName() Name
	Shared() Common
	Validate() error
}

// Common holds the fields every strategy understands.
type Common struct {
	NodeSize     float64 `json:"nodeSize"`
	NodeFontSize float64 `json:"nodeFontSize"`
}

// Shared returns c.
func (c Common) Shared() Common { return c }

// Tiered holds the fields of strategies that honour tiers.
type Tiered struct {
	Orientation    Orientation `json:"orientation"`
	Tiers          tiers.Spec  `json:"tiers"`
	TierSeparation float64     `json:"tierSeparation"`
}

// Tiering returns t.
func (t Tiered) Tiering() Tiered { return t }

// TieredParams is implemented by strategies that honour tiers.
type TieredParams interface {
	Params
	Tiering() Tiered
}

// GroupedParams is implemented by strategies that cluster by group.
type GroupedParams interface {
	Params
	GroupPath() string
}

func defaultCommon() Common { return Common{NodeSize: 10, NodeFontSize: 10} }

func defaultTiered() Tiered { return Tiered{Orientation: Vertical, TierSeparation: 100} }

// =============================================================================
// Circular
// =============================================================================

// CircularParams places nodes evenly on a circle.
type CircularParams struct {
	Common
	// Spacing scales the circumference allotted per node.
	Spacing float64 `json:"spacing"`
}

// NewCircularParams returns the defaults.
func NewCircularParams() CircularParams {
	return CircularParams{Common: defaultCommon(), Spacing: 3}
}

func (CircularParams) LayoutName() Name { return NameCircular }

// =============================================================================
// Custom
// =============================================================================

// CustomParams keeps caller-provided positions.
type CustomParams struct {
	Common
}

// NewCustomParams returns the defaults.
func NewCustomParams() CustomParams { return CustomParams{Common: defaultCommon()} }

func (CustomParams) LayoutName() Name { return NameCustom }

// =============================================================================
// ForceAtlas2
// =============================================================================

// ForceAtlas2Params configures the ForceAtlas2 strategy.
type ForceAtlas2Params struct {
	Common
	Iterations                     int     `json:"iterations"`
	Gravity                        float64 `json:"gravity"`
	ScalingRatio                   float64 `json:"scalingRatio"`
	BarnesHutOptimize              bool    `json:"barnesHutOptimize"`
	BarnesHutTheta                 float64 `json:"barnesHutTheta"`
	LinLogMode                     bool    `json:"linLogMode"`
	StrongGravityMode              bool    `json:"strongGravityMode"`
	OutboundAttractionDistribution bool    `json:"outboundAttractionDistribution"`
	AdjustSizes                    bool    `json:"adjustSizes"`
	EdgeWeightInfluence            float64 `json:"edgeWeightInfluence"`
	SlowDown                       float64 `json:"slowDown"`
	Seed                           uint64  `json:"seed"`
}

// NewForceAtlas2Params returns the defaults.
func NewForceAtlas2Params() ForceAtlas2Params {
	return ForceAtlas2Params{
		Common:              defaultCommon(),
		Iterations:          100,
		Gravity:             1,
		ScalingRatio:        10,
		BarnesHutOptimize:   true,
		BarnesHutTheta:      0.5,
		EdgeWeightInfluence: 1,
		SlowDown:            1,
		Seed:                42,
	}
}

func (ForceAtlas2Params) LayoutName() Name { return NameForceAtlas2 }

// =============================================================================
// Fcose
// =============================================================================

// FcoseParams configures the constraint-based fcose strategy.
type FcoseParams struct {
	Common
	Tiered
	Group           string  `json:"group,omitempty"`
	Quality         Quality `json:"quality"`
	Randomize       bool    `json:"randomize"`
	NodeRepulsion   float64 `json:"nodeRepulsion"`
	IdealEdgeLength float64 `json:"idealEdgeLength"`
	EdgeElasticity  float64 `json:"edgeElasticity"`
	Gravity         float64 `json:"gravity"`
	GravityCompound float64 `json:"gravityCompound"`
	NodeSeparation  float64 `json:"nodeSeparation"`
	NumIter         int     `json:"numIter"`
	Seed            uint64  `json:"seed"`
}

// NewFcoseParams returns the defaults.
func NewFcoseParams() FcoseParams {
	return FcoseParams{
		Common:          defaultCommon(),
		Tiered:          defaultTiered(),
		Quality:         QualityDefault,
		NodeRepulsion:   4500,
		IdealEdgeLength: 50,
		EdgeElasticity:  0.45,
		Gravity:         0.25,
		GravityCompound: 1,
		NodeSeparation:  75,
		NumIter:         2500,
		Seed:            42,
	}
}

func (FcoseParams) LayoutName() Name { return NameFcose }
func (p FcoseParams) GroupPath() string { return p.Group }

// =============================================================================
// Planar
// =============================================================================

// PlanarParams configures the layered (Sugiyama) strategy.
type PlanarParams struct {
	Common
	Tiered
	Layering Layering `json:"layering"`
	// NodeSeparation is the minimum gap between neighbours in a layer.
	NodeSeparation float64 `json:"nodeSeparation"`
	// DecrossPasses bounds the barycenter sweeps.
	DecrossPasses int `json:"decrossPasses"`
}

// NewPlanarParams returns the defaults.
func NewPlanarParams() PlanarParams {
	return PlanarParams{
		Common:         defaultCommon(),
		Tiered:         defaultTiered(),
		Layering:       LayeringSimplex,
		NodeSeparation: 50,
		DecrossPasses:  24,
	}
}

func (PlanarParams) LayoutName() Name { return NamePlanar }

// =============================================================================
// Marketing
// =============================================================================

// MarketingParams configures the radial one-shot force strategy.
type MarketingParams struct {
	Common
	Tiered
	// Radius is the ring latent nodes are pulled to.
	Radius float64 `json:"radius"`
	// LinkDistance is the rest length of edges.
	LinkDistance float64 `json:"linkDistance"`
}

// NewMarketingParams returns the defaults.
func NewMarketingParams() MarketingParams {
	return MarketingParams{
		Common:       defaultCommon(),
		Tiered:       defaultTiered(),
		Radius:       300,
		LinkDistance: 80,
	}
}

func (MarketingParams) LayoutName() Name { return NameMarketing }

// =============================================================================
// Spring
// =============================================================================

// SpringParams configures the continuous spring simulation.
type SpringParams struct {
	Common
	Tiered
	Group          string  `json:"group,omitempty"`
	LinkDistance   float64 `json:"linkDistance"`
	ChargeStrength float64 `json:"chargeStrength"`
	CollidePadding float64 `json:"collidePadding"`
	// ClusterDistance is the minimum distance kept between group proxies.
	ClusterDistance   float64 `json:"clusterDistance"`
	ClusterStrength   float64 `json:"clusterStrength"`
	GroupLinkDistance float64 `json:"groupLinkDistance"`
	VelocityDecay     float64 `json:"velocityDecay"`
	// TickIntervalMillis is the wall-clock time between ticks.
	TickIntervalMillis int `json:"tickIntervalMillis"`
	// DebounceMillis delays graph re-imports after node or edge additions.
	DebounceMillis int `json:"debounceMillis"`
}

// NewSpringParams returns the defaults.
func NewSpringParams() SpringParams {
	return SpringParams{
		Common:             defaultCommon(),
		Tiered:             defaultTiered(),
		LinkDistance:       60,
		ChargeStrength:     -300,
		CollidePadding:     4,
		ClusterDistance:    250,
		ClusterStrength:    0.2,
		GroupLinkDistance:  30,
		VelocityDecay:      0.4,
		TickIntervalMillis: 16,
		DebounceMillis:     100,
	}
}

func (SpringParams) LayoutName() Name { return NameSpring }
func (p SpringParams) GroupPath() string { return p.Group }
