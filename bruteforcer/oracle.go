package main

import "fmt"

var directions = [4]Position{{1, 0}, {-1, 0}, {0, -1}, {0, 1}}

func isPassable(layout []string, pos Position) bool {
	if pos.Row < 0 || pos.Row >= len(layout) || pos.Col < 0 || pos.Col >= len(layout[pos.Row]) {
		return false
	}
	return layout[pos.Row][pos.Col] != '#'
}

// freeCells lists the cells that can hold a start or end
func freeCells(layout []string) []Position {
	var cells []Position
	for r, row := range layout {
		for c := 0; c < len(row); c++ {
			if row[c] == '.' {
				cells = append(cells, Position{Row: r, Col: c})
			}
		}
	}
	return cells
}

// BFS returns the 4-directional distance from start to goal, or -1 when unreachable
func BFS(layout []string, start, goal Position) int {
	if start == goal {
		return 0
	}

	dist := map[Position]int{start: 0}
	queue := []Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range directions {
			next := Position{Row: current.Row + d.Row, Col: current.Col + d.Col}
			if _, seen := dist[next]; seen || !isPassable(layout, next) {
				continue
			}
			dist[next] = dist[current] + 1
			if next == goal {
				return dist[next]
			}
			queue = append(queue, next)
		}
	}

	return -1
}

// Verify compares a server run against the BFS distance want. It returns "" when they agree.
func Verify(layout []string, start, end Position, want int, got *RunResponse) string {
	if want < 0 {
		if got.Found {
			return fmt.Sprintf("A* found a cost %d route but BFS says unreachable", got.Cost)
		}
		return ""
	}

	if !got.Found {
		return fmt.Sprintf("A* found no route but BFS distance is %d", want)
	}
	if got.Cost != want {
		return fmt.Sprintf("A* cost %d, BFS distance %d", got.Cost, want)
	}
	if len(got.Path) != got.Cost+1 {
		return fmt.Sprintf("route has %d cells for cost %d", len(got.Path), got.Cost)
	}
	if got.Path[0] != start || got.Path[len(got.Path)-1] != end {
		return "route does not run from start to end"
	}
	for i, p := range got.Path {
		if !isPassable(layout, p) {
			return fmt.Sprintf("route crosses barrier at (%d,%d)", p.Row, p.Col)
		}
		if i > 0 && abs(p.Row-got.Path[i-1].Row)+abs(p.Col-got.Path[i-1].Col) != 1 {
			return fmt.Sprintf("route jumps between (%d,%d) and (%d,%d)",
				got.Path[i-1].Row, got.Path[i-1].Col, p.Row, p.Col)
		}
	}
	return ""
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
