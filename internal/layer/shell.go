package layer

/*
#cgo pkg-config: gtk-layer-shell-0
#include <gtk-layer-shell.h>
*/
import "C"
import "unsafe"

// InitForWindow turns a not yet realized window into a layer shell surface
func InitForWindow(window unsafe.Pointer) {
	C.gtk_layer_init_for_window((*C.GtkWindow)(window))
}

// SetLayer sets the layer for a layer shell surface
func SetLayer(window unsafe.Pointer, layer Layer) {
	C.gtk_layer_set_layer((*C.GtkWindow)(window), C.GtkLayerShellLayer(layer))
}

// SetAnchor sets which edges to anchor the window to
func SetAnchor(window unsafe.Pointer, edge Edge, anchorTo bool) {
	var anchor C.gboolean
	if anchorTo {
		anchor = 1
	}
	C.gtk_layer_set_anchor((*C.GtkWindow)(window), C.GtkLayerShellEdge(edge), anchor)
}

// SetKeyboardMode sets the keyboard interactivity mode
func SetKeyboardMode(window unsafe.Pointer, mode KeyboardMode) {
	C.gtk_layer_set_keyboard_mode((*C.GtkWindow)(window), C.GtkLayerShellKeyboardMode(mode))
}

// Place anchors a layer surface on the top layer. "fill" anchors all four
// edges; a single edge name docks the surface against that edge only.
func Place(window unsafe.Pointer, anchor string) {
	SetLayer(window, LayerTop)
	SetKeyboardMode(window, KeyboardModeOnDemand)
	for _, edge := range AnchorEdges(anchor) {
		SetAnchor(window, edge, true)
	}
}

// AnchorEdges maps an anchor name to the edges it pins. Unknown names pin
// nothing, leaving the compositor to center the surface.
func AnchorEdges(anchor string) []Edge {
	switch anchor {
	case "fill":
		return []Edge{EdgeLeft, EdgeRight, EdgeTop, EdgeBottom}
	case "left":
		return []Edge{EdgeLeft, EdgeTop, EdgeBottom}
	case "right":
		return []Edge{EdgeRight, EdgeTop, EdgeBottom}
	case "top":
		return []Edge{EdgeTop, EdgeLeft, EdgeRight}
	case "bottom":
		return []Edge{EdgeBottom, EdgeLeft, EdgeRight}
	}
	return nil
}

// Layer represents a layer shell layer
type Layer int

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

// Edge represents a screen edge
type Edge int

const (
	EdgeLeft   Edge = 0
	EdgeRight  Edge = 1
	EdgeTop    Edge = 2
	EdgeBottom Edge = 3
)

// KeyboardMode represents keyboard focus mode
type KeyboardMode int

const (
	KeyboardModeNone      KeyboardMode = 0
	KeyboardModeExclusive KeyboardMode = 1
	KeyboardModeOnDemand  KeyboardMode = 2
)
