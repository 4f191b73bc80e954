package navigation

import (
	"fmt"
	"strconv"
	"strings"
)

// NodePath это путь индексов от корня ({1, 0} первый потомок второго узла)
type NodePath []int

// Equal сообщает, указывают ли пути на один узел
func (p NodePath) Equal(other NodePath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix сообщает, лежит ли p внутри поддерева prefix
func (p NodePath) HasPrefix(prefix NodePath) bool {
	return len(prefix) <= len(p) && p[:len(prefix)].Equal(prefix)
}

// Child возвращает путь i-го потомка, p не меняется
func (p NodePath) Child(i int) NodePath {
	out := make(NodePath, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

func (p NodePath) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

// ParseNodePath разбирает форму "0-1-2"
func ParseNodePath(s string) (NodePath, error) {
	if s == "" {
		return NodePath{}, nil
	}
	parts := strings.Split(s, "-")
	out := make(NodePath, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("navigation: bad path %q", s)
		}
		out[i] = n
	}
	return out, nil
}
