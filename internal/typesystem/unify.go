package typesystem

import "fmt"

// UnifyError reports two types that could not be unified.
type UnifyError struct {
	Left, Right Type
	Reason      string
}

func (e *UnifyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot unify %s with %s: %s", e.Left, e.Right, e.Reason)
	}
	return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
}

// Unify computes the most general substitution that makes a and b
// equal, in the teacher's own typesystem.Unify style (structural
// recursion, TVar binds to anything that doesn't contain it).
func Unify(a, b Type) (Subst, error) {
	return unify(a, b, Subst{})
}

func unify(a, b Type, acc Subst) (Subst, error) {
	a = a.Apply(acc)
	b = b.Apply(acc)

	if av, ok := a.(TVar); ok {
		return bindVar(av, b, acc)
	}
	if bv, ok := b.(TVar); ok {
		return bindVar(bv, a, acc)
	}

	switch at := a.(type) {
	case Primitive:
		bt, ok := b.(Primitive)
		if !ok {
			return nil, &UnifyError{a, b, ""}
		}
		if at.Kind != bt.Kind {
			return nil, &UnifyError{a, b, "different primitive families"}
		}
		if at.IsInteger() {
			if at.Width != 0 && bt.Width != 0 && at.Width != bt.Width {
				return nil, &UnifyError{a, b, "different integer widths"}
			}
		}
		return acc, nil

	case Array:
		bt, ok := b.(Array)
		if !ok {
			return nil, &UnifyError{a, b, ""}
		}
		if at.Resolved && bt.Resolved && at.Size != bt.Size {
			return nil, &UnifyError{a, b, "different array sizes"}
		}
		return unify(at.Elem, bt.Elem, acc)

	case Named:
		bt, ok := b.(Named)
		if !ok || bt.Name != at.Name || len(bt.Args) != len(at.Args) {
			return nil, &UnifyError{a, b, ""}
		}
		cur := acc
		for i := range at.Args {
			var err error
			cur, err = unify(at.Args[i], bt.Args[i], cur)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil

	case TypeOf:
		// Can't unify against an unresolved TypeOf; caller must resolve
		// it first (type-use validation rejects any survivor of this).
		return nil, &UnifyError{a, b, "left side is an unresolved typeof()"}
	}
	return nil, &UnifyError{a, b, "unsupported type case"}
}

func bindVar(v TVar, t Type, acc Subst) (Subst, error) {
	if tv, ok := t.(TVar); ok && tv.Name == v.Name {
		return acc, nil
	}
	if occurs(v.Name, t) {
		return nil, &UnifyError{v, t, "occurs check failed"}
	}
	next := Subst{}
	for k, val := range acc {
		next[k] = val
	}
	next[v.Name] = t
	return next, nil
}

func occurs(name string, t Type) bool {
	for _, fv := range t.FreeTypeVars() {
		if fv == name {
			return true
		}
	}
	return false
}
