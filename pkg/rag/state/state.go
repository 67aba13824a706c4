// Package state defines the values a query passes through on its way from
// raw text to a localized answer.
//
// A query is first Pending (normalized), then Classified (a route is set),
// and finally Resolved (a response is set). Resolvers return a Step that is
// either a Classified value, which demotes the query to another route, or a
// Resolved value, which terminates the graph.
package state

import "strings"

// Route is the resolution strategy chosen for a query.
type Route string

const (
	RouteTime     Route = "TIME"
	RouteDistance Route = "DISTANCE"
	RouteGeneral  Route = "GENERAL"
)

// Category is the lower-case route name reported to clients.
func (r Route) Category() string {
	return strings.ToLower(string(r))
}

// Valid reports whether r is one of the known routes.
func (r Route) Valid() bool {
	switch r {
	case RouteTime, RouteDistance, RouteGeneral:
		return true
	}
	return false
}

// Query is the per-request input as seen by every stage.
type Query struct {
	OriginalText string
	WorkingText  string
	Language     string
	WantsImages  bool

	// Explicit endpoints supplied by the caller, both optional.
	Origin      string
	Destination string
}

// Step is the result of running one stage.
type Step interface {
	step()
	Query() Query
}

// Pending is a normalized query that has not been classified yet.
type Pending struct {
	Q Query
}

// Classified carries a route and no response.
type Classified struct {
	Q     Query
	Route Route

	// DemotedFrom is set when a resolver handed the query to another route.
	DemotedFrom Route
}

// Resolved carries the final response. Route is kept for reporting only.
type Resolved struct {
	Q         Query
	Route     Route
	Response  string
	Images    []string
	Localized bool
	Demoted   bool
}

func (Pending) step()    {}
func (Classified) step() {}
func (Resolved) step()   {}

func (p Pending) Query() Query    { return p.Q }
func (c Classified) Query() Query { return c.Q }
func (r Resolved) Query() Query   { return r.Q }

// Classify moves a pending query onto a route.
func (p Pending) Classify(route Route) Classified {
	return Classified{Q: p.Q, Route: route}
}

// Demote hands a classified query over to another route.
func (c Classified) Demote(to Route) Classified {
	return Classified{Q: c.Q, Route: to, DemotedFrom: c.Route}
}

// Resolve terminates a classified query with a response.
func (c Classified) Resolve(response string, images []string) Resolved {
	return Resolved{
		Q:        c.Q,
		Route:    c.Route,
		Response: response,
		Images:   images,
		Demoted:  c.DemotedFrom != "",
	}
}
