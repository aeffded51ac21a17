package introspect

// Cache memoizes an Introspector. One Cache lives for one generation run.
type Cache struct {
	backend   Introspector
	classes   Memo[*ClassInfo]
	methods   Memo[*MethodInfo]
	imports   Memo[[]Import]
	constants Memo[interface{}]
}

// NewCache wraps backend.
func NewCache(backend Introspector) *Cache {
	return &Cache{backend: backend}
}

// Class implements Introspector.
func (c *Cache) Class(name string) (*ClassInfo, error) {
	return c.classes.Get(name, func() (*ClassInfo, error) {
		return c.backend.Class(name)
	})
}

// Method implements Introspector.
func (c *Cache) Method(class, method string) (*MethodInfo, error) {
	return c.methods.Get(class+"#"+method, func() (*MethodInfo, error) {
		return c.backend.Method(class, method)
	})
}

// Imports implements Introspector.
func (c *Cache) Imports(declaring string) ([]Import, error) {
	return c.imports.Get(declaring, func() ([]Import, error) {
		return c.backend.Imports(declaring)
	})
}

// Constant implements Introspector.
func (c *Cache) Constant(scope, name string) (interface{}, error) {
	return c.constants.Get(scope+"#"+name, func() (interface{}, error) {
		return c.backend.Constant(scope, name)
	})
}
