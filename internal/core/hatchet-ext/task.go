package hatchet_ext

import (
	hatchet "github.com/hatchet-dev/hatchet/sdks/go"
)

type WorkflowName = string

type Task[WI, O any] = func(ctx hatchet.Context, input WI) (O, error)

func WTask[WI, O any](f Task[*WI, *O]) Task[WI, O] {
	return func(ctx hatchet.Context, input WI) (out O, err error) {
		res, err := f(ctx, &input)
		if err != nil {
			return out, err
		}
		return *res, nil
	}
}
