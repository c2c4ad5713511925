package internal

import "errors"

// ErrBrokenChain reports a parent chain that never reaches the start.
var ErrBrokenChain = errors.New("parent chain does not reach start")

// Retrace walks parent links back from goal to start and returns the cells
// in travel order, start excluded and goal included. At most limit links are
// followed, so a cycle in the parent graph cannot loop forever.
func Retrace[NodeType comparable](
	parent func(NodeType) (NodeType, bool),
	start NodeType,
	goal NodeType,
	limit int,
) ([]NodeType, error) {
	var path []NodeType
	current := goal
	for current != start {
		if len(path) >= limit {
			return nil, ErrBrokenChain
		}
		path = append(path, current)
		previousNode, exists := parent(current)
		if !exists {
			return nil, ErrBrokenChain
		}
		current = previousNode
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
