package flow

import (
	"context"
	"fmt"
	"log"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/constants"
	"github.com/kozaktomas/facefinder/internal/imagefile"
)

// Find looks up who is on a photo.
type Find struct {
	base

	api          API
	selector     *backend.Selector
	maxDimension int

	image *imagefile.Image
}

// NewFind creates an idle find flow.
func NewFind(api API, selector *backend.Selector) *Find {
	f := &Find{api: api, selector: selector}
	f.init(KindFind, func() bool { return f.image != nil })
	return f
}

// SetMaxDimension makes Submit downscale larger images first; 0 disables it.
func (f *Find) SetMaxDimension(maxDimension int) {
	f.mu.Lock()
	f.maxDimension = maxDimension
	f.mu.Unlock()
}

// Select sets an already validated image and clears the previous result.
func (f *Find) Select(img *imagefile.Image) {
	f.update(func(v *View) {
		f.image = img
		if v.Pending {
			return
		}
		v.Message = ""
		v.Greeting = ""
		v.PersonName = ""
		v.Error = ""
		if img != nil {
			v.State = StateReady
		} else {
			v.State = StateIdle
		}
	})
}

// SelectData validates raw file bytes.
func (f *Find) SelectData(name string, data []byte) error {
	img, err := imagefile.New(name, data)
	if err != nil {
		f.Select(nil)
		return err
	}
	f.Select(img)
	return nil
}

// SelectFile loads and validates an image from disk.
func (f *Find) SelectFile(path string) error {
	img, err := imagefile.Load(path)
	if err != nil {
		f.Select(nil)
		return err
	}
	f.Select(img)
	return nil
}

// SelectDataURL validates an image given as a data URL or bare base64.
func (f *Find) SelectDataURL(dataURL string) error {
	img, err := imagefile.FromDataURL(dataURL)
	if err != nil {
		f.Select(nil)
		return err
	}
	f.Select(img)
	return nil
}

// Submit posts the image to the recognition endpoint. A match sets the
// greeting, otherwise the backend message is shown as-is. Transport failures
// are logged and leave no message.
func (f *Find) Submit(ctx context.Context) error {
	ctx, err := f.begin(ctx, StateRecognizing, func(v *View) {
		v.Greeting = ""
		v.PersonName = ""
	})
	if err != nil {
		return err
	}

	f.mu.Lock()
	img, maxDimension := f.image, f.maxDimension
	f.mu.Unlock()

	variant, eps, err := f.selector.Endpoints()
	if err != nil {
		return f.fail(err)
	}
	f.update(func(v *View) { v.Backend = variant })

	img, err = imagefile.Resize(img, maxDimension)
	if err != nil {
		return f.fail(fmt.Errorf("resizing image: %w", err))
	}

	result, err := f.api.Recognise(ctx, eps, imagefile.StripDataURL(img.DataURL()))
	if err != nil {
		return f.fail(fmt.Errorf("recognising image: %w", err))
	}

	if !f.end(func(v *View) {
		v.State = StateDone
		if result.Found() {
			v.PersonName = result.PersonName
			v.Greeting = constants.GreetingPrefix + result.PersonName
			return
		}
		v.Message = result.Message
	}) {
		return ErrClosed
	}
	return nil
}

func (f *Find) fail(err error) error {
	if !f.end(func(v *View) {
		v.State = StateFailed
		v.Error = err.Error()
	}) {
		return ErrClosed
	}
	log.Printf("find flow %s: %v", f.ID(), err)
	return err
}
