package model

// Representative is a sales person owning zero or more regions
type Representative struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Color string `db:"color" json:"color"`
}

// AssignRequest assigns regions to a representative, creating it if needed
type AssignRequest struct {
	Representative string   `json:"representative" binding:"required"`
	Regions        []string `json:"regions" binding:"required"`
}

// AssignResult describes the outcome of an assignment
type AssignResult struct {
	Representative Representative `json:"representative"`
	Created        bool           `json:"created"`
	Assigned       []string       `json:"assigned"`
	Ignored        []string       `json:"ignored,omitempty"` // codes not present in the store
	Unassigned     []string       `json:"unassigned,omitempty"`
}

// RepresentativeUpdateRequest renames and/or recolors a representative
type RepresentativeUpdateRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// LegendEntry is one row of the map legend
type LegendEntry struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
