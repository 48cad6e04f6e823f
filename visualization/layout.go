// Package visualization renders a finite-state machine snapshot as a 2-D
// diagram: states evenly spaced on a circle, transitions as curved directed
// edges with distinct paths, and a stable color per state across re-renders.
package visualization

import (
	"math"

	"github.com/pflow-xyz/go-fsmview/fsm"
)

// Visual constants for layout. The canvas size is fixed; the circle radius
// is derived from it so diagrams stay inside the frame regardless of state
// count.
const (
	CanvasWidth  = 720.0
	CanvasHeight = 520.0

	// The smaller canvas dimension governs the circle so nodes and
	// labels keep clear of the frame.
	circleRadius = CanvasHeight/2 - 70

	nodeRadius       = 26.0 // base node size, also the edge endpoint inset
	activeNodeRadius = 32.0 // current state is drawn larger
	activeRingGap    = 5.0  // highlight ring sits this far outside

	baseCurveOffset = 28.0 // first edge between a pair bends this much
	curveIncrement  = 14.0 // each further same-direction edge bends more
	labelScale      = 0.6  // label sits at the offset scaled down
	labelLift       = 6.0  // and slightly above the curve

	selfLoopRadius = 18.0
	selfLoopLift   = 12.0 // loop center offset above the node edge
)

// NodePlacement is one state positioned on the canvas.
type NodePlacement struct {
	Name   string
	X, Y   float64
	Active bool
}

// EdgePath is the drawable geometry of one transition.
//
// For a regular edge, (X1,Y1)-(X2,Y2) are the endpoints inset to the node
// boundaries and (CX,CY) is the control point of a quadratic Bézier curve.
// For a self-loop, LoopX/LoopY/LoopR describe a small circle anchored near
// the node and the line fields are unused.
type EdgePath struct {
	Transition fsm.Transition
	SelfLoop   bool

	X1, Y1 float64
	X2, Y2 float64
	CX, CY float64

	LoopX, LoopY, LoopR float64

	LabelX, LabelY float64

	// Offset is the signed perpendicular displacement of the curve
	// midpoint: positive bends to one side of the straight line,
	// negative to the other.
	Offset float64
}

// GraphLayout is the complete computed scene for one snapshot.
type GraphLayout struct {
	Width, Height float64
	Nodes         []NodePlacement
	Edges         []EdgePath
	Current       string
}

type point struct {
	x, y float64
}

// canonical pair key for grouping same-pair transitions regardless of
// direction.
type pairKey struct {
	a, b string
}

type pairCounters struct {
	forward  int
	backward int
}

// Layout places states evenly on a circle and computes an edge path per
// transition. It returns nil for zero states (the empty-layout signal).
//
// Output is deterministic for identical inputs: nodes follow the state
// order given, edges follow the transition order given, and the per-pair
// direction counters advance in that same left-to-right traversal. No map
// iteration order leaks into the result.
func Layout(states []string, transitions []fsm.Transition, currentState string) *GraphLayout {
	if len(states) == 0 {
		return nil
	}

	layout := &GraphLayout{
		Width:   CanvasWidth,
		Height:  CanvasHeight,
		Current: currentState,
		Nodes:   make([]NodePlacement, 0, len(states)),
		Edges:   make([]EdgePath, 0, len(transitions)),
	}

	centerX := CanvasWidth / 2
	centerY := CanvasHeight / 2

	// Nodes: start at the top (-90°) and proceed clockwise in the given
	// state order.
	positions := make(map[string]point, len(states))
	step := 2 * math.Pi / float64(len(states))
	for k, name := range states {
		angle := -math.Pi/2 + float64(k)*step
		p := point{
			x: centerX + circleRadius*math.Cos(angle),
			y: centerY + circleRadius*math.Sin(angle),
		}
		positions[name] = p
		layout.Nodes = append(layout.Nodes, NodePlacement{
			Name:   name,
			X:      p.x,
			Y:      p.y,
			Active: currentState != "" && name == currentState,
		})
	}

	counters := make(map[pairKey]*pairCounters)
	for _, t := range transitions {
		src, srcOK := positions[t.FromState]
		trg, trgOK := positions[t.ToState]
		if !srcOK || !trgOK {
			// Stale reference to a state outside the snapshot.
			continue
		}

		if t.FromState == t.ToState {
			layout.Edges = append(layout.Edges, selfLoopPath(t, src))
			continue
		}

		// Canonicalize the unordered pair by sorting the two names, so
		// A->B and B->A share one counter group and bend to opposite
		// sides.
		key := pairKey{a: t.FromState, b: t.ToState}
		sign := 1.0
		if key.b < key.a {
			key.a, key.b = key.b, key.a
			sign = -1.0
		}
		group := counters[key]
		if group == nil {
			group = &pairCounters{}
			counters[key] = group
		}
		var occurrence int
		if sign > 0 {
			group.forward++
			occurrence = group.forward
		} else {
			group.backward++
			occurrence = group.backward
		}
		offset := sign * (baseCurveOffset + float64(occurrence-1)*curveIncrement)

		layout.Edges = append(layout.Edges, curvedEdgePath(t, src, trg, offset))
	}

	return layout
}

func curvedEdgePath(t fsm.Transition, src, trg point, offset float64) EdgePath {
	dx := trg.x - src.x
	dy := trg.y - src.y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		dist = 1
	}
	ux := dx / dist
	uy := dy / dist

	// Endpoints inset to the node boundaries along the straight-line
	// direction, so curves never start under a node.
	x1 := src.x + ux*nodeRadius
	y1 := src.y + uy*nodeRadius
	x2 := trg.x - ux*nodeRadius
	y2 := trg.y - uy*nodeRadius

	midX := (x1 + x2) / 2
	midY := (y1 + y2) / 2
	perpX := -uy
	perpY := ux

	return EdgePath{
		Transition: t,
		X1:         x1,
		Y1:         y1,
		X2:         x2,
		Y2:         y2,
		CX:         midX + perpX*offset,
		CY:         midY + perpY*offset,
		LabelX:     midX + perpX*offset*labelScale,
		LabelY:     midY + perpY*offset*labelScale - labelLift,
		Offset:     offset,
	}
}

func selfLoopPath(t fsm.Transition, p point) EdgePath {
	loopY := p.y - nodeRadius - selfLoopLift
	return EdgePath{
		Transition: t,
		SelfLoop:   true,
		LoopX:      p.x,
		LoopY:      loopY,
		LoopR:      selfLoopRadius,
		LabelX:     p.x,
		LabelY:     loopY - selfLoopRadius - labelLift,
	}
}
