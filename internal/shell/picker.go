package shell

import (
	"fmt"

	"github.com/gotk3/gotk3/gtk"
)

// PickDirectory asks the user for a folder with a modal chooser. It must run
// on the GTK main loop. ok is false when the dialog was cancelled.
func PickDirectory(parent *gtk.Window, start string) (path string, ok bool, err error) {
	dialog, err := gtk.FileChooserDialogNewWith2Buttons(
		"Choose media folder",
		parent,
		gtk.FILE_CHOOSER_ACTION_SELECT_FOLDER,
		"Cancel", gtk.RESPONSE_CANCEL,
		"Select", gtk.RESPONSE_ACCEPT,
	)
	if err != nil {
		return "", false, fmt.Errorf("failed to create folder chooser: %w", err)
	}
	defer dialog.Destroy()

	if start != "" {
		dialog.SetCurrentFolder(start)
	}

	if dialog.Run() != gtk.RESPONSE_ACCEPT {
		return "", false, nil
	}
	path = dialog.GetFilename()
	return path, path != "", nil
}
