package engine

import "container/heap"

// StepFunc is invoked after every expansion and every path mark
type StepFunc func()

// frontierItem orders cells by f-score, then by insertion sequence
type frontierItem struct {
	cell *Cell
	f    int
	seq  int
}

type frontier []frontierItem

func (q frontier) Len() int { return len(q) }
func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontier) Push(x any) {
	*q = append(*q, x.(frontierItem))
}

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = frontierItem{}
	*q = old[:n-1]
	return item
}

// RunSearch runs A* from start to end over the grid's precomputed adjacency.
// It mutates cell states as it goes and reports whether a path was found.
func RunSearch(grid *Grid, start, end *Cell, onStep StepFunc) bool {
	return Search(grid, start, end, onStep).Found
}

// Search is RunSearch with run statistics
func Search(grid *Grid, start, end *Cell, onStep StepFunc) Result {
	return search(grid, start, end, onStep, onStep)
}

// search keeps expansion and path-marking callbacks apart so callers can tell the phases apart
func search(grid *Grid, start, end *Cell, onExpand, onMark StepFunc) Result {
	if onExpand == nil {
		onExpand = func() {}
	}
	if onMark == nil {
		onMark = func() {}
	}

	goal := end.Position()
	seq := 0
	open := make(frontier, 0, grid.Rows())
	heap.Init(&open)
	heap.Push(&open, frontierItem{cell: start, f: ManhattanDistance(start.Position(), goal), seq: seq})

	cameFrom := make(map[*Cell]*Cell)
	gScore := map[*Cell]int{start: 0}
	pending := map[*Cell]bool{start: true}

	result := Result{}
	for open.Len() > 0 {
		current := heap.Pop(&open).(frontierItem).cell
		delete(pending, current)

		if current == end {
			path, marked := reconstructPath(cameFrom, current, onMark)
			end.SetState(End)
			start.SetState(Start)
			result.Found = true
			result.Cost = gScore[current]
			result.Path = path
			result.Steps += marked
			return result
		}

		result.Expanded++
		for _, neighbor := range current.Neighbors() {
			tentative := gScore[current] + 1
			if known, ok := gScore[neighbor]; ok && tentative >= known {
				continue
			}
			cameFrom[neighbor] = current
			gScore[neighbor] = tentative
			if !pending[neighbor] {
				seq++
				f := tentative + ManhattanDistance(neighbor.Position(), goal)
				heap.Push(&open, frontierItem{cell: neighbor, f: f, seq: seq})
				pending[neighbor] = true
				neighbor.SetState(Open)
			}
		}

		onExpand()
		result.Steps++

		if current != start {
			current.SetState(Closed)
		}
	}

	return result
}

// reconstructPath walks predecessors back from current, marking every cell
// that has a predecessor of its own as Path. The root is never marked.
// It returns the route from root to current inclusive and the number of marks.
func reconstructPath(cameFrom map[*Cell]*Cell, current *Cell, onMark StepFunc) ([]Position, int) {
	route := []Position{current.Position()}
	marked := 0
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		current = prev
		route = append(route, current.Position())
		if _, hasPrev := cameFrom[current]; !hasPrev {
			break
		}
		current.SetState(Path)
		marked++
		onMark()
	}

	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route, marked
}
