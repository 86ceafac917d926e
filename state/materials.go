package state

// Material is one loaded-filament slot; Ext
// must always equal its index in PrinterState.Materials.
type Material struct {
	Tracker
	Ext   int
	Type  string
	Color string
	Hex   string
}

func (m *Material) Set(ctx Ctx, materialType, color, hex string) {
	m.Tracker.Bind(ctx)
	SetField(&m.Tracker, "type", &m.Type, materialType)
	SetField(&m.Tracker, "color", &m.Color, color)
	SetField(&m.Tracker, "hex", &m.Hex, hex)
}

func (m *Material) Fields() map[string]any {
	return map[string]any{"ext": m.Ext, "type": m.Type, "color": m.Color, "hex": m.Hex}
}

// Nozzle is one extruder's physical characteristics (diameter etc); its
// index must equal its position in PrinterState.Nozzles.
type Nozzle struct {
	Tracker
	Index    int
	Diameter float64
}

func (n *Nozzle) SetDiameter(ctx Ctx, v float64) {
	n.Tracker.Bind(ctx)
	SetField(&n.Tracker, "diameter", &n.Diameter, v)
}

func (n *Nozzle) Fields() map[string]any {
	return map[string]any{"nozzle": n.Index, "diameter": n.Diameter}
}

// MmsSlot is one entry of the multi-material-system layout.
type MmsSlot struct {
	Tracker
	Index   int
	MaterialExt *int
}

func (s *MmsSlot) SetMaterialExt(ctx Ctx, v int) {
	s.Tracker.Bind(ctx)
	if s.MaterialExt != nil && *s.MaterialExt == v {
		return
	}
	s.MaterialExt = &v
	s.MarkChanged("material_ext")
}

// Bed is the build plate's material/surface state.
type Bed struct {
	Tracker
	Type string
}

func (b *Bed) SetType(ctx Ctx, v string) {
	b.Tracker.Bind(ctx)
	SetField(&b.Tracker, "type", &b.Type, v)
}

func (b *Bed) Fields() map[string]any {
	return map[string]any{"type": b.Type}
}
