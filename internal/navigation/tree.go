// Package navigation хранит меню модулей как данные и фильтрует его по доступу.
package navigation

import (
	"encoding/json"

	"github.com/cloud-ru/erp-finance-summary/internal/access"
	"github.com/cloud-ru/erp-finance-summary/internal/entities"
)

// NavNode это Leaf или Group
type NavNode interface {
	NodeID() string
	isNavNode()
}

// Leaf ведёт на страницу модуля
type Leaf struct {
	ID     string
	Label  string
	Path   string
	Module string
}

// Group содержит вложенные узлы
type Group struct {
	ID       string
	Label    string
	Children []NavNode
}

func (l Leaf) NodeID() string  { return l.ID }
func (g Group) NodeID() string { return g.ID }
func (Leaf) isNavNode()        {}
func (Group) isNavNode()       {}

// MarshalJSON кодирует лист вместе с видом узла
func (l Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   string `json:"kind"`
		ID     string `json:"id"`
		Label  string `json:"label"`
		Path   string `json:"path"`
		Module string `json:"module"`
	}{"leaf", l.ID, l.Label, l.Path, l.Module})
}

// MarshalJSON кодирует группу с видом и потомками
func (g Group) MarshalJSON() ([]byte, error) {
	children := g.Children
	if children == nil {
		children = []NavNode{}
	}
	return json.Marshal(struct {
		Kind     string    `json:"kind"`
		ID       string    `json:"id"`
		Label    string    `json:"label"`
		Children []NavNode `json:"children"`
	}{"group", g.ID, g.Label, children})
}

// Filter оставляет листья, которые принимает allow. Пустые группы удаляются.
// Исходное дерево не меняется.
func Filter(tree []NavNode, allow func(Leaf) bool) []NavNode {
	out := make([]NavNode, 0, len(tree))
	for _, node := range tree {
		switch n := node.(type) {
		case Leaf:
			if allow(n) {
				out = append(out, n)
			}
		case Group:
			children := Filter(n.Children, allow)
			if len(children) > 0 {
				out = append(out, Group{ID: n.ID, Label: n.Label, Children: children})
			}
		}
	}
	return out
}

// ForAccess оставляет листья доступных пользователю модулей
func ForAccess(tree []NavNode, ac *access.Context) []NavNode {
	return Filter(tree, func(l Leaf) bool {
		return l.Module == "" || ac.HasModuleAccess(l.Module)
	})
}

// Find возвращает узел по пути
func Find(tree []NavNode, path NodePath) (NavNode, bool) {
	if len(path) == 0 {
		return nil, false
	}
	nodes := tree
	var node NavNode
	for _, i := range path {
		if i < 0 || i >= len(nodes) {
			return nil, false
		}
		node = nodes[i]
		if g, ok := node.(Group); ok {
			nodes = g.Children
		} else {
			nodes = nil
		}
	}
	return node, true
}

// Walk обходит узлы в глубину вместе с путями
func Walk(tree []NavNode, fn func(path NodePath, node NavNode)) {
	walk(tree, nil, fn)
}

func walk(nodes []NavNode, parent NodePath, fn func(NodePath, NavNode)) {
	for i, node := range nodes {
		path := parent.Child(i)
		fn(path, node)
		if g, ok := node.(Group); ok {
			walk(g.Children, path, fn)
		}
	}
}

// Menu возвращает меню модулей ERP
func Menu() []NavNode {
	return []NavNode{
		Leaf{ID: "dashboard", Label: "Dashboard", Path: "/"},
		Group{ID: "services", Label: "Services", Children: []NavNode{
			Leaf{ID: "manpower", Label: "Manpower", Path: "/manpower-services", Module: entities.ModuleManpower},
			Leaf{ID: "passport", Label: "Passport", Path: "/passport-services", Module: entities.ModulePassport},
			Leaf{ID: "ticket-check", Label: "Ticket check", Path: "/ticket-checks", Module: entities.ModuleTicketing},
		}},
		Group{ID: "finance", Label: "Finance", Children: []NavNode{
			Leaf{ID: "assets", Label: "Assets", Path: "/assets", Module: entities.ModuleAsset},
			Leaf{ID: "investments", Label: "Investments", Path: "/investments", Module: entities.ModuleInvestment},
		}},
		Group{ID: "hr", Label: "HR", Children: []NavNode{
			Leaf{ID: "employees", Label: "Employees", Path: "/employees", Module: entities.ModuleHR},
		}},
	}
}
