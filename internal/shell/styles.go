package shell

import (
	"fmt"
	"log"
	"os"

	"github.com/chess10kp/tokie/internal/config"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
)

const stylesTemplate = `
* {
    font-family: %[6]s;
    font-size: %[7]dpx;
}

#main-window, #content {
    background-color: %[1]s;
    color: %[2]s;
}

#sidebar {
    background-color: %[3]s;
    padding: 6px 0;
}

#sidebar button {
    background: none;
    border: none;
    border-left: 3px solid transparent;
    border-radius: 0;
    padding: 10px 0;
    color: %[2]s;
}

#sidebar button:hover {
    background-color: %[5]s;
}

#sidebar button.active {
    border-left-color: %[4]s;
}

.service-view {
    padding: 24px;
}

.service-title {
    font-size: 20px;
    font-weight: bold;
    color: %[2]s;
}

.service-url {
    color: %[4]s;
}
`

// BuildStyles renders the stylesheet for the configured colors
func BuildStyles(s config.StylingConfig) string {
	return fmt.Sprintf(stylesTemplate,
		s.BackgroundColor,
		s.ForegroundColor,
		s.SidebarColor,
		s.AccentColor,
		s.ButtonHover,
		s.FontFamily,
		s.FontSize,
	)
}

var globalStyleProvider *gtk.CssProvider

// SetupStyles installs the application stylesheet, replacing an earlier one
func SetupStyles(s config.StylingConfig) {
	screen, err := gdk.ScreenGetDefault()
	if err != nil || screen == nil {
		log.Printf("[SHELL] Warning: Failed to get default screen: %v", err)
		return
	}

	provider, err := gtk.CssProviderNew()
	if err != nil {
		log.Printf("[SHELL] Warning: Failed to create css provider: %v", err)
		return
	}
	if err := provider.LoadFromData(BuildStyles(s)); err != nil {
		log.Printf("[SHELL] Warning: Failed to load styles: %v", err)
		return
	}

	if globalStyleProvider != nil {
		gtk.RemoveProviderForScreen(screen, globalStyleProvider)
	}
	globalStyleProvider = provider
	gtk.AddProviderForScreen(screen, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}

// LoadCustomCSS layers a user stylesheet over the defaults when path exists
func LoadCustomCSS(path string) {
	if path == "" {
		return
	}
	screen, err := gdk.ScreenGetDefault()
	if err != nil || screen == nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	provider, _ := gtk.CssProviderNew()
	if err := provider.LoadFromData(string(data)); err != nil {
		log.Printf("[SHELL] Ignoring custom css %s: %v", path, err)
		return
	}
	gtk.AddProviderForScreen(screen, provider, gtk.STYLE_PROVIDER_PRIORITY_USER)
}
