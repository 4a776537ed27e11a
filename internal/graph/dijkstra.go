package graph

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoPath      = errors.New("no path between stops")
	ErrUnknownStop = errors.New("unknown stop")
	ErrSearchLimit = errors.New("search exploration limit reached")
)

type queueItem struct {
	stopID string
	cost   float64
	seq    uint64
}

// priorityQueue orders by cost, then by enqueue sequence.
type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

type predecessor struct {
	from string
	edge Edge
	eta  int
}

// ShortestPath runs Dijkstra from fromID to toID, weighting edges by preference p as of asOf.
// Every weight in the search is evaluated against the same asOf. The search stops as soon as
// toID is settled. ErrNoPath is returned when toID is unreachable.
func (g *Graph) ShortestPath(ctx context.Context, fromID, toID string, p Preference, asOf time.Time) (Path, error) {
	return g.search(ctx, fromID, toID, p, asOf, g.searchLimit())
}

// searchLimit bounds the pops of one search. Each settled stop relaxes its edges once and
// only a strict improvement pushes, so a correct search pops at most EdgeCount()+1 items.
// Reaching the limit means the queue discipline is broken, and ErrSearchLimit reports it.
func (g *Graph) searchLimit() int {
	return g.edgeCount + len(g.order) + 1
}

func (g *Graph) search(ctx context.Context, fromID, toID string, p Preference, asOf time.Time, limit int) (Path, error) {
	if p == "" {
		p = Recommended
	}
	if !p.Valid() {
		return Path{}, fmt.Errorf("%w: %q", ErrInvalidPreference, p)
	}
	if _, ok := g.stops[fromID]; !ok {
		return Path{}, fmt.Errorf("%w: %s", ErrUnknownStop, fromID)
	}
	if _, ok := g.stops[toID]; !ok {
		return Path{}, fmt.Errorf("%w: %s", ErrUnknownStop, toID)
	}

	costs := map[string]float64{fromID: 0}
	prev := make(map[string]predecessor)
	settled := make(map[string]bool)

	var seq uint64
	pq := &priorityQueue{}
	heap.Push(pq, &queueItem{stopID: fromID, cost: 0, seq: seq})

	pops := 0

	for pq.Len() > 0 {
		if pops >= limit {
			return Path{}, ErrSearchLimit
		}
		if err := ctx.Err(); err != nil {
			return Path{}, err
		}

		item := heap.Pop(pq).(*queueItem)
		pops++
		if settled[item.stopID] {
			continue
		}
		settled[item.stopID] = true

		if item.stopID == toID {
			return g.reconstructPath(prev, fromID, toID, item.cost, p, asOf), nil
		}

		for _, e := range g.adjacency[item.stopID] {
			if settled[e.To] {
				continue
			}
			candidate := item.cost + EdgeWeight(e, p, asOf)
			if current, seen := costs[e.To]; !seen || candidate < current {
				costs[e.To] = candidate
				prev[e.To] = predecessor{from: item.stopID, edge: e, eta: EdgeETA(e, asOf)}
				seq++
				heap.Push(pq, &queueItem{stopID: e.To, cost: candidate, seq: seq})
			}
		}
	}

	return Path{}, ErrNoPath
}

func (g *Graph) reconstructPath(prev map[string]predecessor, fromID, toID string, cost float64, p Preference, asOf time.Time) Path {
	path := Path{
		Cost:       cost,
		Preference: p,
		AsOf:       asOf,
	}

	stops := []Stop{g.stops[toID]}
	var segments []Segment

	current := toID
	for current != fromID {
		step := prev[current]
		from := g.stops[step.from]
		to := g.stops[current]

		segments = append(segments, Segment{
			FromID:   from.ID,
			ToID:     to.ID,
			From:     from.Name,
			To:       to.Name,
			Mode:     step.edge.Mode,
			Route:    step.edge.RouteName,
			Fare:     step.edge.Fare,
			ETA:      step.eta,
			Distance: step.edge.Distance,
		})
		path.TotalFare += step.edge.Fare
		path.TotalETA += step.eta
		path.TotalDistance += step.edge.Distance

		stops = append(stops, from)
		current = step.from
	}

	for i, j := 0, len(stops)-1; i < j; i, j = i+1, j-1 {
		stops[i], stops[j] = stops[j], stops[i]
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}

	path.Stops = stops
	path.Segments = segments
	return path
}
