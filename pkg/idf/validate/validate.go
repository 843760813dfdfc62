// Package validate cross-checks parsed IDF documents against each
// other: a board against the library that should define its packages,
// and a panel against the boards it places. These are consumer-side
// joins, kept separate from parsing so a single file can always be
// parsed on its own.
package validate

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/board"
	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/library"
)

// boardRefDes marks a placement that places a board on a panel rather
// than a component on a board.
const boardRefDes = "BOARD"

// LibraryCoversBoard checks that every component placed on the board
// resolves to a geometry defined in the library. Placements with the
// BOARD reference designator place boards, not components, and are not
// looked up.
func LibraryCoversBoard(lib *library.Library, b *board.Board) error {
	defined := make(map[string]bool, len(lib.Components))
	for _, c := range lib.Components {
		defined[c.Geometry] = true
	}

	for _, p := range b.Placements {
		if p.RefDes == boardRefDes {
			continue
		}
		if !defined[p.Package] {
			return fmt.Errorf("component %s (placed as %s) not found in library", p.Package, p.RefDes)
		}
	}
	return nil
}

// PanelReferencesBoards checks that every board placed on the panel is
// one of the given boards, matched by the board name from its header.
func PanelReferencesBoards(panel *board.Board, boards []*board.Board) error {
	known := make(map[string]bool, len(boards))
	for _, b := range boards {
		known[b.Header.BoardName] = true
	}

	for _, p := range panel.Placements {
		if p.RefDes != boardRefDes {
			continue
		}
		if !known[p.Package] {
			return fmt.Errorf("board %s referenced in panel not found", p.Package)
		}
	}
	return nil
}
