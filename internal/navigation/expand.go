package navigation

import "sort"

// ExpandState хранит раскрытые группы отдельно от самого дерева
type ExpandState struct {
	open map[string]struct{}
}

// NewExpandState создаёт состояние с раскрытыми группами
func NewExpandState(ids ...string) *ExpandState {
	s := &ExpandState{open: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.open[id] = struct{}{}
	}
	return s
}

// Toggle переключает группу и возвращает, раскрыта ли она теперь
func (s *ExpandState) Toggle(id string) bool {
	if _, ok := s.open[id]; ok {
		delete(s.open, id)
		return false
	}
	s.open[id] = struct{}{}
	return true
}

// Expanded сообщает, раскрыта ли группа
func (s *ExpandState) Expanded(id string) bool {
	_, ok := s.open[id]
	return ok
}

// CollapseAll сворачивает все группы
func (s *ExpandState) CollapseAll() {
	s.open = make(map[string]struct{})
}

// IDs возвращает раскрытые группы по алфавиту
func (s *ExpandState) IDs() []string {
	out := make([]string, 0, len(s.open))
	for id := range s.open {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
