package keyword

import (
	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

type uniqueItemsValidator struct{}

func buildUniqueItems(kw, _ value.Value, _ digest.Digest) (Validator, error) {
	if !kw.Bool() {
		return nil, nil
	}
	return uniqueItemsValidator{}, nil
}

func (uniqueItemsValidator) Keyword() string { return "uniqueItems" }

// Validate reports the first duplicate only. Elements are bucketed by hash
// and then compared structurally.
func (uniqueItemsValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	seen := make(map[uint64][]int)
	elems := inst.Node().Elements()
	for i, e := range elems {
		h := value.Hash(e)
		for _, j := range seen[h] {
			if value.Equal(elems[j], e) {
				m := Fail(ctx, inst, "uniqueItems", "array must not contain duplicate elements (indices %d and %d are equal)", j, i).
					With("duplicates", value.Array(value.Int(int64(j)), value.Int(int64(i))))
				return rep.Log(m)
			}
		}
		seen[h] = append(seen[h], i)
	}
	return nil
}

// additionalItemsValidator enforces additionalItems: false on tuples.
type additionalItemsValidator struct {
	allowed int
}

func buildAdditionalItems(kw, _ value.Value, d digest.Digest) (Validator, error) {
	ad, ok := d.(digest.Array)
	if kw.Kind() != value.KindBool || kw.Bool() || !ok || !ad.ItemsIsArray {
		return nil, nil
	}
	return additionalItemsValidator{allowed: ad.ItemsSize}, nil
}

func (additionalItemsValidator) Keyword() string { return "additionalItems" }

func (v additionalItemsValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	n := inst.Node().Len()
	if n <= v.allowed {
		return nil
	}
	m := Fail(ctx, inst, "additionalItems", "array is too long (%d), maximum %d allowed", n, v.allowed).
		With("allowed", value.Int(int64(v.allowed))).
		With("found", value.Int(int64(n)))
	return rep.Log(m)
}
