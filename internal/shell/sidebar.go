package shell

import (
	"fmt"
	"log"
	"strings"

	"github.com/chess10kp/tokie/internal/catalog"
	"github.com/gotk3/gotk3/gtk"
)

// Sidebar is the vertical strip of service buttons. All methods must run on
// the GTK main loop; onActivate is called there too and must not block.
type Sidebar struct {
	box        *gtk.Box
	icons      *IconCache
	iconSize   int
	onActivate func(catalog.Service)
	buttons    map[string]*gtk.Button
	library    *gtk.Button
}

// NewSidebar creates an empty sidebar. icons may be nil, in which case
// buttons show the first letter of the service name.
func NewSidebar(icons *IconCache, iconSize int, onActivate func(catalog.Service)) (*Sidebar, error) {
	box, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create sidebar: %w", err)
	}
	box.SetName("sidebar")

	return &Sidebar{
		box:        box,
		icons:      icons,
		iconSize:   iconSize,
		onActivate: onActivate,
		buttons:    make(map[string]*gtk.Button),
	}, nil
}

// Widget returns the sidebar container
func (s *Sidebar) Widget() *gtk.Box {
	return s.box
}

// SetServices rebuilds the buttons for services
func (s *Sidebar) SetServices(services []catalog.Service) {
	for name, btn := range s.buttons {
		btn.Destroy()
		delete(s.buttons, name)
	}

	for _, svc := range services {
		btn, err := s.newButton(svc)
		if err != nil {
			log.Printf("[SHELL] Failed to create sidebar button for %s: %v", svc.Name, err)
			continue
		}
		s.box.PackStart(btn, false, false, 0)
		s.buttons[svc.Name] = btn
	}

	s.box.ShowAll()
	log.Printf("[SHELL] Sidebar shows %d services", len(s.buttons))
}

// SetLibraryAction adds a button at the bottom of the strip that runs fn
func (s *Sidebar) SetLibraryAction(fn func()) error {
	if s.library != nil {
		s.library.Destroy()
	}
	btn, err := gtk.ButtonNewFromIconName("folder-videos", gtk.ICON_SIZE_LARGE_TOOLBAR)
	if err != nil {
		return fmt.Errorf("failed to create library button: %w", err)
	}
	btn.SetTooltipText("Media library")
	btn.SetRelief(gtk.RELIEF_NONE)
	btn.Connect("clicked", func() {
		fn()
	})
	s.box.PackEnd(btn, false, false, 0)
	s.library = btn
	btn.Show()
	return nil
}

// SetActive highlights the button of the visible service
func (s *Sidebar) SetActive(serviceName string) {
	for name, btn := range s.buttons {
		styleCtx, err := btn.GetStyleContext()
		if err != nil {
			continue
		}
		if name == serviceName {
			styleCtx.AddClass("active")
		} else {
			styleCtx.RemoveClass("active")
		}
	}
}

func (s *Sidebar) newButton(svc catalog.Service) (*gtk.Button, error) {
	btn, err := gtk.ButtonNew()
	if err != nil {
		return nil, err
	}
	btn.SetTooltipText(svc.Name)
	btn.SetRelief(gtk.RELIEF_NONE)

	hasImage := false
	if s.icons != nil {
		if pixbuf, err := s.icons.GetIcon(svc.Icon, s.iconSize); err == nil {
			if img, err := gtk.ImageNewFromPixbuf(pixbuf); err == nil {
				btn.SetImage(img)
				btn.SetAlwaysShowImage(true)
				hasImage = true
			}
		}
	}
	if !hasImage {
		btn.SetLabel(buttonLetter(svc.Name))
	}

	btn.Connect("clicked", func() {
		s.onActivate(svc)
	})
	return btn, nil
}

func buttonLetter(name string) string {
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[0]))
}
