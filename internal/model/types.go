// Package model holds the data types for the shared-cut cutting-stock
// optimizer: materials and parts as supplied by the caller, the instances
// and placements the optimizer produces, and the settings that govern a run.
//
// Types in this package are plain data plus small derived helpers; the
// algorithms that build chains and placements live in package engine.
package model

import "github.com/google/uuid"

// SupplyKind distinguishes a material type that can be spawned without
// bound from one the caller has declared a preferred finite count for.
type SupplyKind int

const (
	// SupplyUnlimited means the engine may spawn as many MaterialInstances
	// of this type as needed to place every part.
	SupplyUnlimited SupplyKind = iota
	// SupplyFinite means the caller has a preferred stock count in hand;
	// the engine still spawns beyond it when required for completeness,
	// but logs a SoftWarning when it does (see Warning in errors.go).
	SupplyFinite
)

// Supply replaces the source system's quantity=0-means-unlimited sentinel
// with an explicit discriminated value.
type Supply struct {
	Kind  SupplyKind
	Count int // meaningful only when Kind == SupplyFinite
}

// UnlimitedSupply returns a Supply that never caps provisioning.
func UnlimitedSupply() Supply { return Supply{Kind: SupplyUnlimited} }

// FiniteSupply returns a Supply with a preferred (but not hard) cap of n.
func FiniteSupply(n int) Supply { return Supply{Kind: SupplyFinite, Count: n} }

// Material is a stock bar type: a unique id and a positive length.
type Material struct {
	ID     string
	Length float64
	Supply Supply
}

// NewMaterial creates a Material with unlimited supply.
func NewMaterial(id string, length float64) Material {
	return Material{ID: id, Length: length, Supply: UnlimitedSupply()}
}

// CornerPosition names one of the four corners of a part.
type CornerPosition int

const (
	TopLeft CornerPosition = iota
	TopRight
	BottomLeft
	BottomRight
)

func (c CornerPosition) String() string {
	switch c {
	case TopLeft:
		return "topLeft"
	case TopRight:
		return "topRight"
	case BottomLeft:
		return "bottomLeft"
	case BottomRight:
		return "bottomRight"
	default:
		return "unknown"
	}
}

// PartAngles holds the four corner bevel angles of a part, each in [0, 90).
// A 0 angle denotes a square corner (no bevel).
type PartAngles struct {
	TopLeft     float64
	TopRight    float64
	BottomLeft  float64
	BottomRight float64
}

// At returns the angle at the given corner.
func (a PartAngles) At(pos CornerPosition) float64 {
	switch pos {
	case TopLeft:
		return a.TopLeft
	case TopRight:
		return a.TopRight
	case BottomLeft:
		return a.BottomLeft
	case BottomRight:
		return a.BottomRight
	default:
		return 0
	}
}

// HasUsableAngles reports whether at least one corner is beveled.
func (a PartAngles) HasUsableAngles() bool {
	return a.TopLeft > 0 || a.TopRight > 0 || a.BottomLeft > 0 || a.BottomRight > 0
}

// DefaultThickness is used for a Part whose Thickness is unset or non-positive.
const DefaultThickness = 10.0

// Part is a demanded piece to be cut from stock.
type Part struct {
	ID        string
	Length    float64
	Quantity  int
	Angles    PartAngles
	Thickness float64
}

// NewPart creates a Part with the default thickness and a generated id.
func NewPart(length float64, quantity int, angles PartAngles) Part {
	return Part{
		ID:        uuid.New().String()[:8],
		Length:    length,
		Quantity:  quantity,
		Angles:    angles,
		Thickness: DefaultThickness,
	}
}

// EffectiveThickness returns p.Thickness, or DefaultThickness when unset.
func (p Part) EffectiveThickness() float64 {
	if p.Thickness <= 0 {
		return DefaultThickness
	}
	return p.Thickness
}

// HasUsableAngles reports whether this part can participate in a shared cut.
func (p Part) HasUsableAngles() bool { return p.Angles.HasUsableAngles() }

// PartInstance identifies one physical copy of a Part out of its Quantity.
type PartInstance struct {
	PartID        string
	InstanceIndex int // in [0, Quantity)
}

// AngleMatch records a usable corner pairing between two parts.
type AngleMatch struct {
	Part1Position CornerPosition
	Part2Position CornerPosition
	SharedAngle   float64
	Savings       float64
}

// PartMatch aggregates every usable corner pairing between two distinct parts.
type PartMatch struct {
	Part1ID    string
	Part2ID    string
	Best       AngleMatch
	AllMatches []AngleMatch
}

// SharedCutConnection is one edge of a SharedCutChain: two adjacent chain
// members and the corners/savings of the cut they share.
type SharedCutConnection struct {
	FromPartID   string
	ToPartID     string
	FromPosition CornerPosition
	ToPosition   CornerPosition
	SharedAngle  float64
	Savings      float64
}

// SharedCutChain is an ordered sequence of parts where every adjacent pair
// shares a bevel cut.
type SharedCutChain struct {
	ID           string
	PartIDs      []string
	Connections  []SharedCutConnection
	TotalLength  float64
	TotalSavings float64
	IsMixedChain bool
}

// SharedCutInfo describes a placed part's position within its chain.
type SharedCutInfo struct {
	ChainID         string
	PositionInChain int
	PrevConnection  *SharedCutConnection
	NextConnection  *SharedCutConnection
}

// PlacedPart is one part placed at a position on a MaterialInstance.
type PlacedPart struct {
	PartID                string
	PartInstanceIndex     int
	MaterialID            string
	MaterialInstanceIndex int
	Position              float64
	Length                float64
	IsInSharedCutChain    bool
	SharedCutInfo         *SharedCutInfo
}

// MaterialInstance is a concrete bar spawned from a Material type. It also
// serves as the "material usage plan" reported to the caller: the final
// result includes one of these per bar that received at least one part.
type MaterialInstance struct {
	MaterialID    string
	InstanceIndex int
	Length        float64
	UsedLength    float64
	Placed        []PlacedPart
}

// RemainingLength returns the unused length of the bar.
func (m MaterialInstance) RemainingLength() float64 { return m.Length - m.UsedLength }

// IsEmpty reports whether no part has been placed on the bar yet.
func (m MaterialInstance) IsEmpty() bool { return len(m.Placed) == 0 }

// Utilization returns the fraction of the bar's length that is used.
func (m MaterialInstance) Utilization() float64 {
	if m.Length <= 0 {
		return 0
	}
	return m.UsedLength / m.Length
}

// Algorithm selects the placement policy the optimizer runs.
type Algorithm string

const (
	// AlgorithmBestFit is the deterministic Best-Fit-Decreasing placement
	// engine. It is the sole path when Algorithm is the zero value or unset.
	AlgorithmBestFit Algorithm = "best_fit"
	// AlgorithmGenetic additionally refines the Best-Fit ordering with a
	// genetic search over work-item order (see engine/genetic.go). It runs
	// instead of the Best-Fit pass but seats every unit through the same bar
	// pool, so completeness does not depend on the search.
	AlgorithmGenetic Algorithm = "genetic"
)

// Settings governs a single optimization run. All fields are optional and
// DefaultSettings supplies sensible production defaults.
type Settings struct {
	FrontCuttingLoss float64
	CuttingLoss      float64
	AngleTolerance   float64
	MaxChainLength   int
	Algorithm        Algorithm
	// MinUsableOffcut is the remaining-length threshold below which a
	// partially-used bar is flagged as fragmentation (see result.go).
	MinUsableOffcut float64
}

// DefaultSettings returns the defaults used when a caller does not override
// them.
func DefaultSettings() Settings {
	return Settings{
		FrontCuttingLoss: 10,
		CuttingLoss:      3,
		AngleTolerance:   10,
		MaxChainLength:   50,
		Algorithm:        AlgorithmBestFit,
		MinUsableOffcut:  100,
	}
}

// Validate reports a ConfigError for any setting that would make the
// optimizer's behavior undefined or unsafe.
func (s Settings) Validate() error {
	if s.MaxChainLength < 2 {
		return &ConfigError{Message: "maxChainLength must be >= 2"}
	}
	if s.AngleTolerance < 0 {
		return &ConfigError{Message: "angleTolerance must be >= 0"}
	}
	return nil
}

// ResultSummary holds human-facing derived statistics for a CuttingResult.
type ResultSummary struct {
	MaterialUtilization string // e.g. "91.7%"
}

// CuttingResult is the full output of one optimizer run.
type CuttingResult struct {
	MaterialUsagePlans         []MaterialInstance
	UnplacedParts              []Part
	InvalidParts               []InvalidPart
	Chains                     []SharedCutChain
	AllPartsPlaced             bool
	TotalMaterialsUsed         int
	TotalWasteLength           float64
	OverallUtilization         float64
	UtilizationStdDev          float64
	TotalSavingsFromSharedCuts float64
	Summary                    ResultSummary
	Warnings                   []Warning
}

// InvalidPart pairs a part that failed validation with the reason why.
type InvalidPart struct {
	Part   Part
	Reason error
}
