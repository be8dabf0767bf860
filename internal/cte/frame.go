package cte

// frame is a chain of local-variable cells, one per call/block scope.
// Cells are pointers so that a write through a child frame (an inner
// block assigning to an outer local) is observed by every holder of
// that cell, matching the language's block-scoped-but-shared-storage
// assignment semantics (spec §4.2 step 3, §4.6).
type frame struct {
	parent *frame
	vars   map[string]*Value
}

func newFrame(parent *frame) *frame {
	return &frame{parent: parent, vars: map[string]*Value{}}
}

func (f *frame) lookup(name string) (*Value, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if cell, ok := cur.vars[name]; ok {
			return cell, true
		}
	}
	return nil, false
}

// define introduces name in this exact frame (not an ancestor),
// shadowing nothing since the resolver already rejected any real
// shadowing; CTE-level "define" is purely local value storage keyed
// by name.
func (f *frame) define(name string, v Value) *Value {
	cell := new(Value)
	*cell = v
	f.vars[name] = cell
	return cell
}
