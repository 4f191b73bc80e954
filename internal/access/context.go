// Package access определяет, какие модули ERP доступны пользователю.
package access

import (
	"context"
	"sort"
)

// Context содержит набор разрешённых модулей одного пользователя.
// Передаётся явно, глобального состояния прав нет.
type Context struct {
	userID  string
	modules map[string]struct{}
}

// NewContext создаёт контекст доступа из идентификаторов модулей
func NewContext(userID string, modules []string) *Context {
	set := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		if m != "" {
			set[m] = struct{}{}
		}
	}
	return &Context{userID: userID, modules: set}
}

// UserID возвращает владельца контекста
func (c *Context) UserID() string {
	if c == nil {
		return ""
	}
	return c.userID
}

// HasModuleAccess проверяет доступ к модулю. Nil-контекст не даёт доступа никуда.
func (c *Context) HasModuleAccess(moduleID string) bool {
	if c == nil {
		return false
	}
	_, ok := c.modules[moduleID]
	return ok
}

// Modules возвращает разрешённые модули по алфавиту
func (c *Context) Modules() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.modules))
	for m := range c.modules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

type ctxKey struct{}

// WithContext кладёт контекст доступа в ctx
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// FromContext достаёт контекст доступа из ctx или nil
func FromContext(ctx context.Context) *Context {
	ac, _ := ctx.Value(ctxKey{}).(*Context)
	return ac
}
