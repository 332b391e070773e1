package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/spadequery/internal/graph"
)

// scanner walks the head of a query line. Arguments are not tokenized here:
// filter expressions belong to the store and pass through verbatim.
type scanner struct {
	src string
	pos int
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) ident() (string, bool) {
	start := s.pos
	for s.pos < len(s.src) && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos], s.pos > start
}

// Parse recognizes one query line. Lines that match no form return
// ErrUnrecognized.
func Parse(line string) (Query, error) {
	src := strings.TrimSpace(line)
	src = strings.TrimSpace(strings.TrimSuffix(src, ";"))
	s := &scanner{src: src}

	var h Header
	first, ok := s.ident()
	if !ok {
		return nil, ErrUnrecognized
	}
	s.skipSpace()

	method := first
	switch s.peek() {
	case '=':
		s.pos++
		s.skipSpace()
		h.Result = first
		h.Expression = src[s.pos:]
		name, ok := s.ident()
		if !ok {
			return nil, ErrUnrecognized
		}
		method = name
		if s.peek() == '.' {
			s.pos++
			h.Target = name
			if method, ok = s.ident(); !ok {
				return nil, ErrUnrecognized
			}
		}
	case '.':
		s.pos++
		h.Target = first
		if method, ok = s.ident(); !ok {
			return nil, ErrUnrecognized
		}
	}

	if s.peek() != '(' || !strings.HasSuffix(src, ")") {
		return nil, ErrUnrecognized
	}
	args := src[s.pos+1 : len(src)-1]
	return build(method, h, args)
}

func build(method string, h Header, args string) (Query, error) {
	assignable := h.Result != ""
	switch method {
	case "getVertices", "getEdges":
		if !assignable {
			return nil, ErrUnrecognized
		}
		filter, err := requireExpression(method, args)
		if err != nil {
			return nil, err
		}
		if method == "getEdges" {
			return EdgesQuery{Header: h, Filter: filter}, nil
		}
		return VerticesQuery{Header: h, Filter: filter}, nil

	case "getPaths":
		if !assignable {
			return nil, ErrUnrecognized
		}
		return parsePaths(h, args)

	case "getLineage":
		if !assignable {
			return nil, ErrUnrecognized
		}
		return parseLineage(h, args)

	case "getChildren", "getParents":
		if !assignable || h.Target == "" {
			return nil, ErrUnrecognized
		}
		filter, err := requireExpression(method, args)
		if err != nil {
			return nil, err
		}
		if method == "getParents" {
			return ParentsQuery{Header: h, Filter: filter}, nil
		}
		return ChildrenQuery{Header: h, Filter: filter}, nil

	case "print":
		if assignable || h.Target == "" {
			return nil, ErrUnrecognized
		}
		return PrintQuery{Header: h, Keys: splitKeys(args)}, nil
	}
	return nil, ErrUnrecognized
}

func requireExpression(method, args string) (string, error) {
	expr := strings.TrimSpace(args)
	if expr == "" {
		return "", fmt.Errorf("%w: %s requires an expression", ErrSyntax, method)
	}
	return expr, nil
}

func parsePaths(h Header, args string) (Query, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: getPaths takes 3 arguments, got %d", ErrSyntax, len(parts))
	}
	var nums [3]int
	for i, p := range parts {
		n, err := parseCount(p)
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}
	return PathsQuery{Header: h, Src: nums[0], Dst: nums[1], MaxLength: nums[2]}, nil
}

func parseLineage(h Header, args string) (Query, error) {
	parts := strings.SplitN(args, ",", 4)
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: getLineage takes 3 or 4 arguments, got %d", ErrSyntax, len(parts))
	}

	origin := strings.TrimSpace(parts[0])
	if origin == "" || strings.IndexFunc(origin, func(r rune) bool { return r > 0x7f || !isIdentByte(byte(r)) }) >= 0 {
		return nil, fmt.Errorf("%w: invalid lineage origin %q", ErrSyntax, origin)
	}
	depth, err := parseCount(parts[1])
	if err != nil {
		return nil, err
	}
	token := strings.TrimSpace(parts[2])
	direction, err := graph.ParseDirection(token)
	if err != nil {
		return nil, err
	}

	terminating := NullExpression
	if len(parts) == 4 {
		terminating = strings.TrimSpace(parts[3])
		if terminating == "" {
			return nil, fmt.Errorf("%w: empty terminating expression", ErrSyntax)
		}
	}

	return LineageQuery{
		Header:         h,
		Origin:         origin,
		Depth:          depth,
		Direction:      direction,
		DirectionToken: token,
		Terminating:    terminating,
	}, nil
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedInteger, s)
	}
	return n, nil
}

func splitKeys(args string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, k := range strings.Split(args, ",") {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}
