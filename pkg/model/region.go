package model

import "database/sql"

// Region is one postal-code area; RepresentativeID is NULL when unassigned
type Region struct {
	Code             string        `db:"code" json:"code"`
	RepresentativeID sql.NullInt64 `db:"representative_id" json:"-"`
}

// Assigned reports whether the region has an owner
func (r Region) Assigned() bool {
	return r.RepresentativeID.Valid
}

// Owner is the representative holding a region, as used for rendering
type Owner struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Assignments maps region code to its owner; a nil owner means unassigned
type Assignments map[string]*Owner

// Unassigned returns the number of regions without an owner
func (a Assignments) Unassigned() int {
	n := 0
	for _, owner := range a {
		if owner == nil {
			n++
		}
	}
	return n
}

// RegionListRequest carries a set of region codes
type RegionListRequest struct {
	Regions []string `json:"regions" binding:"required"`
}

// RegionListResponse carries a sorted set of region codes
type RegionListResponse struct {
	Regions []string `json:"regions"`
	Total   int      `json:"total"`
}

// SeedResponse reports how many regions a seed run inserted
type SeedResponse struct {
	Inserted int `json:"inserted"`
	Total    int `json:"total"`
}
