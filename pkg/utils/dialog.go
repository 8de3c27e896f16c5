package utils

import "github.com/sqweek/dialog"

// AskForFile shows a native open-file dialog filtered to CHIP-8 ROMs
// and archives.
func AskForFile(title, startingDir string) (string, error) {
	builder := dialog.File().SetStartDir(startingDir).Title(title)
	builder.Filter("CHIP-8 ROM", "ch8", "zip", "gz", "7z")

	// show the dialog
	return builder.Load()
}
