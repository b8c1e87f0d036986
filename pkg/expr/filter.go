package expr

// Filter makes a filter function from the arguments given in a filter
// application. In "v | name(a, b)", the Filter registered as name is called
// with a and b, and the FilterFunc it returns is applied to v. A bare
// "v | name" calls the Filter with no arguments.
type Filter func(args ...any) FilterFunc

// FilterFunc transforms a value.
type FilterFunc func(v any) (any, error)

// Simple makes a Filter that ignores its arguments and applies f.
func Simple(f func(v any) any) Filter {
	ff := func(v any) (any, error) { return f(v), nil }
	return func(...any) FilterFunc { return ff }
}
