package visualization

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"
)

const (
	arrowheadSize = 8.0
	// Self-loop endpoints sit this many degrees either side of the
	// node-facing point, so the arc opens toward its node.
	selfLoopGapDeg = 50.0
)

// RenderSVG turns a computed layout into an SVG scene. Nodes are filled
// with their palette color, the current state is drawn larger with a
// highlight ring, and every edge is stroked in its source state's color
// with an arrowhead pointing into the target.
//
// A nil layout (zero states) renders a small placeholder frame so callers
// can always embed the result.
func RenderSVG(layout *GraphLayout, palette *Palette) string {
	var buf bytes.Buffer

	if layout == nil {
		buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 300 120" width="300" height="120">`)
		buf.WriteString("\n")
		buf.WriteString(`<rect x="0" y="0" width="300" height="120" fill="#f8f9fa" rx="8"/>`)
		buf.WriteString("\n")
		buf.WriteString(`<text x="150" y="60" font-family="system-ui, Arial" font-size="13" fill="#999" text-anchor="middle" dominant-baseline="middle">no states to draw</text>`)
		buf.WriteString("\n</svg>\n")
		return buf.String()
	}

	buf.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`,
		layout.Width, layout.Height, layout.Width, layout.Height))
	buf.WriteString("\n")

	// Background rectangle for visibility on dark themes
	buf.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%.0f" height="%.0f" fill="#f8f9fa" rx="8"/>`,
		layout.Width, layout.Height))
	buf.WriteString("\n")

	buf.WriteString(`<defs>`)
	buf.WriteString(`<style>`)
	buf.WriteString(`.edge { stroke-width: 1.6; fill: none; }`)
	buf.WriteString(`.edge-label { font-family: system-ui, Arial; font-size: 11px; text-anchor: middle; }`)
	buf.WriteString(`.node { stroke: #333; stroke-width: 1.5; }`)
	buf.WriteString(`.node-ring { fill: none; stroke: #ffb300; stroke-width: 3; }`)
	buf.WriteString(`.node-label { font-family: system-ui, Arial; font-size: 12px; fill: #fff; text-anchor: middle; dominant-baseline: middle; }`)
	buf.WriteString(`</style>`)
	buf.WriteString(`</defs>`)
	buf.WriteString("\n")

	// Edges first, behind the nodes.
	for _, edge := range layout.Edges {
		color := palette.Color(edge.Transition.FromState)
		if edge.SelfLoop {
			drawSelfLoop(&buf, edge, color)
		} else {
			drawEdge(&buf, edge, color)
		}
	}

	for _, node := range layout.Nodes {
		drawNode(&buf, node, palette.Color(node.Name))
	}

	buf.WriteString("</svg>\n")
	return buf.String()
}

// SaveSVG renders a layout to SVG and writes it to a file.
func SaveSVG(layout *GraphLayout, palette *Palette, filename string) error {
	svg := RenderSVG(layout, palette)
	return os.WriteFile(filename, []byte(svg), 0644)
}

func drawNode(buf *bytes.Buffer, node NodePlacement, color string) {
	radius := nodeRadius
	if node.Active {
		radius = activeNodeRadius
		buf.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" class="node-ring"/>`,
			node.X, node.Y, radius+activeRingGap))
		buf.WriteString("\n")
	}

	buf.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" class="node"/>`,
		node.X, node.Y, radius, color))
	buf.WriteString("\n")

	label := node.Name
	if len(label) > 12 {
		label = label[:9] + "..."
	}
	buf.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" class="node-label">%s</text>`,
		node.X, node.Y, escapeXML(label)))
	buf.WriteString("\n")
}

func drawEdge(buf *bytes.Buffer, edge EdgePath, color string) {
	buf.WriteString(fmt.Sprintf(`<path d="M %.1f %.1f Q %.1f %.1f %.1f %.1f" stroke="%s" class="edge"/>`,
		edge.X1, edge.Y1, edge.CX, edge.CY, edge.X2, edge.Y2, color))
	buf.WriteString("\n")

	// Arrowhead along the curve's end tangent: the direction from the
	// control point to the end point.
	tdx := edge.X2 - edge.CX
	tdy := edge.Y2 - edge.CY
	dist := math.Hypot(tdx, tdy)
	if dist == 0 {
		dist = 1
	}
	drawArrowhead(buf, edge.X2, edge.Y2, tdx/dist, tdy/dist, color)

	drawEdgeLabel(buf, edge, color)
}

func drawSelfLoop(buf *bytes.Buffer, edge EdgePath, color string) {
	gap := selfLoopGapDeg * math.Pi / 180

	// The node sits below the loop center; endpoints flank the
	// node-facing point and the arc travels the long way around.
	startAngle := math.Pi/2 + gap
	endAngle := math.Pi/2 - gap

	sx := edge.LoopX + edge.LoopR*math.Cos(startAngle)
	sy := edge.LoopY + edge.LoopR*math.Sin(startAngle)
	ex := edge.LoopX + edge.LoopR*math.Cos(endAngle)
	ey := edge.LoopY + edge.LoopR*math.Sin(endAngle)

	buf.WriteString(fmt.Sprintf(`<path d="M %.1f %.1f A %.1f %.1f 0 1 1 %.1f %.1f" stroke="%s" class="edge"/>`,
		sx, sy, edge.LoopR, edge.LoopR, ex, ey, color))
	buf.WriteString("\n")

	// Tangent of the arc at its end point, in the direction of travel.
	drawArrowhead(buf, ex, ey, -math.Sin(endAngle), math.Cos(endAngle), color)

	drawEdgeLabel(buf, edge, color)
}

func drawArrowhead(buf *bytes.Buffer, x, y, dirX, dirY float64, color string) {
	ax := x + (-dirX*arrowheadSize - dirY*arrowheadSize*0.45)
	ay := y + (-dirY*arrowheadSize + dirX*arrowheadSize*0.45)
	bx := x + (-dirX*arrowheadSize + dirY*arrowheadSize*0.45)
	by := y + (-dirY*arrowheadSize - dirX*arrowheadSize*0.45)

	buf.WriteString(fmt.Sprintf(`<path d="M %.1f %.1f L %.1f %.1f L %.1f %.1f Z" fill="%s"/>`,
		x, y, ax, ay, bx, by, color))
	buf.WriteString("\n")
}

func drawEdgeLabel(buf *bytes.Buffer, edge EdgePath, color string) {
	event := edge.Transition.Event
	if event == "" {
		return
	}
	buf.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" class="edge-label" fill="%s">%s</text>`,
		edge.LabelX, edge.LabelY, color, escapeXML(event)))
	buf.WriteString("\n")
}

// escapeXML escapes special characters for safe SVG embedding.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
