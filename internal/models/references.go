package models

import "sort"

// ReferencesModel carries the stops and routes mentioned by an entry.
type ReferencesModel struct {
	Routes []RouteReference `json:"routes"`
	Stops  []Stop           `json:"stops"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Routes: []RouteReference{},
		Stops:  []Stop{},
	}
}

// ReferenceCollector gathers unique references while a response is assembled.
type ReferenceCollector struct {
	routes map[string]RouteReference
	stops  map[string]Stop
}

func NewReferenceCollector() *ReferenceCollector {
	return &ReferenceCollector{
		routes: make(map[string]RouteReference),
		stops:  make(map[string]Stop),
	}
}

func (c *ReferenceCollector) AddStop(s Stop) {
	if s.ID != "" {
		c.stops[s.ID] = s
	}
}

func (c *ReferenceCollector) AddRoute(r RouteReference) {
	if r.ID != "" {
		c.routes[r.ID] = r
	}
}

// References returns the collected references sorted by id.
func (c *ReferenceCollector) References() ReferencesModel {
	refs := NewEmptyReferences()
	for _, r := range c.routes {
		refs.Routes = append(refs.Routes, r)
	}
	for _, s := range c.stops {
		refs.Stops = append(refs.Stops, s)
	}
	sort.Slice(refs.Routes, func(i, j int) bool { return refs.Routes[i].ID < refs.Routes[j].ID })
	sort.Slice(refs.Stops, func(i, j int) bool { return refs.Stops[i].ID < refs.Stops[j].ID })
	return refs
}
