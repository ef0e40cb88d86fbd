package enhance

// ---------------------------------------------------------------------------
// Enhancement context
// ---------------------------------------------------------------------------

// Context pairs the marker annotation that identifies an entity with the
// strategy applied to matching classes. A run holds one or more contexts and
// applies them in order; later contexts see the bytes earlier ones produced.
// Contexts are immutable once constructed and safe to share across workers.
type Context struct {
	// Name identifies the context in outcomes and ledger entries. When
	// empty, the strategy name stands in.
	Name string

	// Marker is the dotted annotation name classifying entities.
	// DefaultMarker when empty.
	Marker string

	Strategy Strategy
}

// EntityMarker returns the configured marker annotation, defaulted.
func (ctx Context) EntityMarker() string {
	if ctx.Marker == "" {
		return DefaultMarker
	}
	return ctx.Marker
}

// Label returns the context's reporting identity.
func (ctx Context) Label() string {
	if ctx.Name != "" {
		return ctx.Name
	}
	if ctx.Strategy != nil {
		return ctx.Strategy.Name()
	}
	return ""
}
