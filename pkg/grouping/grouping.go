// Package grouping partitions list items into named groups for display.
package grouping

type Group[T any] struct {
	Name  string
	Items []T
}

// By groups items by key. Groups appear in the order their first item does
// and items keep their relative order. An empty key falls into the
// "Default" group.
func By[T any](items []T, key func(T) string) []Group[T] {
	var result []Group[T]
	index := make(map[string]int)
	for _, item := range items {
		name := key(item)
		if name == "" {
			name = "Default"
		}
		i, ok := index[name]
		if !ok {
			i = len(result)
			index[name] = i
			result = append(result, Group[T]{Name: name})
		}
		result[i].Items = append(result[i].Items, item)
	}
	return result
}

// Flatten concatenates the items of groups in group order.
func Flatten[T any](groups []Group[T]) []T {
	n := 0
	for _, g := range groups {
		n += len(g.Items)
	}
	out := make([]T, 0, n)
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}
