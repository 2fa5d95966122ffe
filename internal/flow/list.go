package flow

import (
	"context"
	"fmt"
	"log"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/constants"
)

// List fetches the registered faces. Every Load refetches; nothing is cached.
type List struct {
	base

	api      API
	selector *backend.Selector
}

// NewList creates an idle list flow.
func NewList(api API, selector *backend.Selector) *List {
	l := &List{api: api, selector: selector}
	l.init(KindList, nil)
	return l
}

// Load issues one list-faces request. A failure is logged and recorded in
// the message; the face list is left empty.
func (l *List) Load(ctx context.Context) error {
	ctx, err := l.begin(ctx, StateLoading, func(v *View) {
		v.Faces = nil
	})
	if err != nil {
		return err
	}

	variant, eps, err := l.selector.Endpoints()
	if err != nil {
		return l.fail(err)
	}
	l.update(func(v *View) { v.Backend = variant })

	faces, err := l.api.ListFaces(ctx, eps)
	if err != nil {
		return l.fail(fmt.Errorf("listing faces: %w", err))
	}

	if !l.end(func(v *View) {
		v.State = StateDone
		v.Faces = faces
	}) {
		return ErrClosed
	}
	return nil
}

func (l *List) fail(err error) error {
	if !l.end(func(v *View) {
		v.State = StateFailed
		v.Faces = nil
		v.Message = constants.MessageListFailed
		v.Error = err.Error()
	}) {
		return ErrClosed
	}
	log.Printf("list flow %s: %v", l.ID(), err)
	return err
}
