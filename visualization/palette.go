package visualization

// statePalette provides distinct display colors for states, cycled when
// states outnumber entries.
var statePalette = []string{
	"#1976d2", // blue
	"#7b1fa2", // purple
	"#388e3c", // green
	"#f57c00", // orange
	"#c2185b", // pink
	"#0097a7", // cyan
	"#5d4037", // brown
	"#455a64", // slate
}

// fallbackColor is returned for states outside the known set.
const fallbackColor = "#9e9e9e"

// Palette assigns and remembers a display color per state name for the
// lifetime of a session. A state keeps its color across re-renders even
// when later snapshots insert new states ahead of it, because assignment
// order is first-seen order, not snapshot position. Callers must Reset the
// palette when the transition set is wiped or the machine is reset; color
// identity is only meaningful relative to the current transition graph.
type Palette struct {
	assigned map[string]string
}

// NewPalette creates an empty color assignment cache.
func NewPalette() *Palette {
	return &Palette{assigned: make(map[string]string)}
}

// EnsureColors assigns a color to every state not yet in the mapping.
// Each new state gets palette[n mod len(palette)] where n is the number of
// assignments already made, so earlier states never shift.
func (p *Palette) EnsureColors(states []string) {
	for _, name := range states {
		if _, ok := p.assigned[name]; ok {
			continue
		}
		p.assigned[name] = statePalette[len(p.assigned)%len(statePalette)]
	}
}

// Color returns the assigned color for a state, or a neutral fallback for
// states the palette has never seen. It never panics.
func (p *Palette) Color(state string) string {
	if c, ok := p.assigned[state]; ok {
		return c
	}
	return fallbackColor
}

// Reset clears every assignment so the next render starts the palette
// cycle over.
func (p *Palette) Reset() {
	p.assigned = make(map[string]string)
}

// Len reports how many states currently hold an assignment.
func (p *Palette) Len() int {
	return len(p.assigned)
}
