package graph

import "fmt"

// GetVertices returns the vertices matching expression and the edges among them.
func (m *Memory) GetVertices(expression string) (Graph, error) {
	expr, err := ParseExpression(expression)
	if err != nil {
		return nil, err
	}
	out := m.derive()
	for _, v := range m.vertices {
		if expr.Match(v.Annotations) {
			out.AddVertex(v)
		}
	}
	for _, e := range m.edges {
		_, childOK := out.vertices[e.Child]
		_, parentOK := out.vertices[e.Parent]
		if childOK && parentOK {
			out.addEdge(e)
		}
	}
	return out, nil
}

// GetEdges returns the edges matching expression and their endpoints.
func (m *Memory) GetEdges(expression string) (Graph, error) {
	expr, err := ParseExpression(expression)
	if err != nil {
		return nil, err
	}
	out := m.derive()
	for _, e := range m.edges {
		if !expr.Match(e.Annotations) {
			continue
		}
		out.AddVertex(m.vertices[e.Child])
		out.AddVertex(m.vertices[e.Parent])
		out.addEdge(e)
	}
	return out, nil
}

// GetLineage walks up to depth hops from the vertex with store identifier id.
func (m *Memory) GetLineage(id, depth int, direction Direction, terminating string) (Graph, error) {
	if depth < 0 {
		return nil, fmt.Errorf("lineage depth must not be negative, got %d", depth)
	}
	stop, err := parseTerminating(terminating)
	if err != nil {
		return nil, err
	}
	start, err := m.vertexByStoreID(id)
	if err != nil {
		return nil, err
	}

	up, down := m.adjacency()
	out := m.derive()
	out.AddVertex(m.vertices[start])

	frontier := []string{start}
	visited := map[string]bool{start: true}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, vid := range frontier {
			if vid != start && stop.Match(m.vertices[vid].Annotations) {
				continue
			}
			var edges []Edge
			if direction == Ancestors || direction == Both {
				edges = append(edges, up[vid]...)
			}
			if direction == Descendants || direction == Both {
				edges = append(edges, down[vid]...)
			}
			for _, e := range edges {
				other := e.Parent
				if other == vid {
					other = e.Child
				}
				out.AddVertex(m.vertices[other])
				out.addEdge(e)
				if !visited[other] {
					visited[other] = true
					next = append(next, other)
				}
			}
		}
		frontier = next
	}
	return out, nil
}

// GetPaths returns every vertex and edge on a child-to-parent path from src
// to dst of at most maxLength edges.
func (m *Memory) GetPaths(src, dst, maxLength int) (Graph, error) {
	if maxLength < 0 {
		return nil, fmt.Errorf("maximum path length must not be negative, got %d", maxLength)
	}
	from, err := m.vertexByStoreID(src)
	if err != nil {
		return nil, err
	}
	to, err := m.vertexByStoreID(dst)
	if err != nil {
		return nil, err
	}

	up, down := m.adjacency()
	// distance from every vertex to dst following parent edges, used to
	// prune branches that cannot reach dst within the remaining budget.
	dist := map[string]int{to: 0}
	queue := []string{to}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] >= maxLength {
			continue
		}
		for _, e := range down[cur] {
			if _, seen := dist[e.Child]; !seen {
				dist[e.Child] = dist[cur] + 1
				queue = append(queue, e.Child)
			}
		}
	}

	out := m.derive()
	if _, reachable := dist[from]; !reachable {
		return out, nil
	}

	var path []Edge
	onPath := map[string]bool{from: true}
	var walk func(cur string)
	walk = func(cur string) {
		if cur == to {
			out.AddVertex(m.vertices[from])
			for _, e := range path {
				out.AddVertex(m.vertices[e.Parent])
				out.addEdge(e)
			}
			return
		}
		for _, e := range up[cur] {
			d, ok := dist[e.Parent]
			if !ok || onPath[e.Parent] || len(path)+1+d > maxLength {
				continue
			}
			onPath[e.Parent] = true
			path = append(path, e)
			walk(e.Parent)
			path = path[:len(path)-1]
			onPath[e.Parent] = false
		}
	}
	walk(from)
	return out, nil
}

// adjacency indexes edges by child (up) and by parent (down).
func (m *Memory) adjacency() (up, down map[string][]Edge) {
	up = make(map[string][]Edge)
	down = make(map[string][]Edge)
	for _, e := range m.Edges() {
		up[e.Child] = append(up[e.Child], e)
		down[e.Parent] = append(down[e.Parent], e)
	}
	return up, down
}
