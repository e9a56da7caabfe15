//go:build js && wasm

package main

import (
	"encoding/json"
	"image"
	"syscall/js"

	"github.com/hatworks/designer/internal/document"
	"github.com/hatworks/designer/internal/engine"
)

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func jsonResult(v any) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}

func number(v js.Value) float64 {
	if v.Type() != js.TypeNumber {
		return 0
	}
	return v.Float()
}

func stringArg(args []js.Value, i int) string {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

// bytesFrom copies a Uint8Array into Go.
func bytesFrom(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

func bytesTo(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// pointerFrom maps a mouse or touch event on canvas into canvas pixels.
// touchend carries its point in changedTouches.
func pointerFrom(ev, canvas js.Value, w, h int) document.Point {
	pe := engine.PointerEvent{
		ClientX: number(ev.Get("clientX")),
		ClientY: number(ev.Get("clientY")),
	}
	for _, field := range []string{"touches", "changedTouches"} {
		list := ev.Get(field)
		if list.Truthy() && list.Length() > 0 {
			t := list.Index(0)
			pe.Touches = []document.Point{{X: number(t.Get("clientX")), Y: number(t.Get("clientY"))}}
			break
		}
	}

	r := canvas.Call("getBoundingClientRect")
	rect := engine.ClientRect{
		Left:   number(r.Get("left")),
		Top:    number(r.Get("top")),
		Width:  number(r.Get("width")),
		Height: number(r.Get("height")),
	}
	return engine.CanvasPoint(pe, rect, w, h)
}

// putPixels draws non-premultiplied RGBA pixels into a 2D context, resizing
// its canvas when needed. Opaque *image.RGBA buffers qualify too.
func putPixels(ctx2d js.Value, pix []byte, w, h int) {
	canvas := ctx2d.Get("canvas")
	if canvas.Get("width").Int() != w || canvas.Get("height").Int() != h {
		canvas.Set("width", w)
		canvas.Set("height", h)
	}
	arr := js.Global().Get("Uint8ClampedArray").New(len(pix))
	js.CopyBytesToJS(arr, pix)
	data := js.Global().Get("ImageData").New(arr, w, h)
	ctx2d.Call("putImageData", data, 0, 0)
}

func putImage(ctx2d js.Value, img *image.RGBA) {
	putPixels(ctx2d, img.Pix, img.Bounds().Dx(), img.Bounds().Dy())
}

// promise runs fn off the event loop. Blocking work such as fetch must not
// run inside a js.FuncOf callback.
func promise(fn func() (interface{}, error)) js.Value {
	var handler js.Func
	handler = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resolve, reject := args[0], args[1]
		go func() {
			defer handler.Release()
			v, err := fn()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(v)
		}()
		return nil
	})
	return js.Global().Get("Promise").New(handler)
}

// locked wraps a callback so it runs with mu held.
func locked(fn func(this js.Value, args []js.Value) interface{}) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		mu.Lock()
		defer mu.Unlock()
		return fn(this, args)
	})
}
