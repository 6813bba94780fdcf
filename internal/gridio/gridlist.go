package gridio

// GridList is an ordered list of rasters produced by an import.
//
// If Owned, the importer manages the list: its previous rasters are released at the beginning of each import and
// its rasters are lent to the host. Otherwise, the list has been supplied by the caller, who
// manages its content. In both cases, the rasters belong to the list.
type GridList struct {
	Owned bool
	items []*Raster
}

// NewGridList creates an empty list
func NewGridList(owned bool) *GridList {
	return &GridList{Owned: owned}
}

// Add appends r to the list
func (l *GridList) Add(r *Raster) {
	l.items = append(l.items, r)
}

// Len returns the number of rasters
func (l *GridList) Len() int {
	return len(l.items)
}

// Items returns the rasters in the order they have been added
func (l *GridList) Items() []*Raster {
	return l.items
}

// Release releases all the rasters and empties the list
func (l *GridList) Release() {
	for _, r := range l.items {
		r.Release()
	}
	l.items = nil
}
