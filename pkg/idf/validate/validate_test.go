package validate

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/board"
	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/library"
)

func testLibrary(geometries ...string) *library.Library {
	lib := &library.Library{}
	for _, g := range geometries {
		lib.Components = append(lib.Components, library.Component{
			Kind:     library.Electrical,
			Geometry: g,
		})
	}
	return lib
}

func TestLibraryCoversBoard(t *testing.T) {
	lib := testLibrary("cs13_a", "dip_14w")
	b := &board.Board{
		Placements: []board.Placement{
			{Package: "cs13_a", RefDes: "C1"},
			{Package: "dip_14w", RefDes: "U4"},
		},
	}
	if err := LibraryCoversBoard(lib, b); err != nil {
		t.Errorf("Expected board to be covered, got %v", err)
	}
}

func TestLibraryCoversBoardMissingComponent(t *testing.T) {
	lib := testLibrary("cs13_a")
	b := &board.Board{
		Placements: []board.Placement{
			{Package: "cs13_a", RefDes: "C1"},
			{Package: "plcc_20", RefDes: "U9"},
		},
	}
	err := LibraryCoversBoard(lib, b)
	if err == nil {
		t.Fatal("Expected error for missing component, got nil")
	}
	if !strings.Contains(err.Error(), "plcc_20") {
		t.Errorf("error %q should name the missing package", err)
	}
}

func TestLibraryCoversBoardSkipsBoardPlacements(t *testing.T) {
	// A BOARD placement on a panel places a board, not a library
	// component, and must not be looked up.
	lib := testLibrary()
	panel := &board.Board{
		Placements: []board.Placement{
			{Package: "logic_board", RefDes: "BOARD"},
		},
	}
	if err := LibraryCoversBoard(lib, panel); err != nil {
		t.Errorf("BOARD placements should be skipped, got %v", err)
	}
}

func TestPanelReferencesBoards(t *testing.T) {
	panel := &board.Board{
		Placements: []board.Placement{
			{Package: "logic_board", RefDes: "BOARD"},
			{Package: "logic_board", RefDes: "BOARD"},
			{Package: "cs13_a", RefDes: "C1"},
		},
	}
	boards := []*board.Board{
		{Header: board.Header{BoardName: "logic_board"}},
	}
	if err := PanelReferencesBoards(panel, boards); err != nil {
		t.Errorf("Expected panel references to resolve, got %v", err)
	}
}

func TestPanelReferencesBoardsMissing(t *testing.T) {
	panel := &board.Board{
		Placements: []board.Placement{
			{Package: "io_board", RefDes: "BOARD"},
		},
	}
	boards := []*board.Board{
		{Header: board.Header{BoardName: "logic_board"}},
	}
	err := PanelReferencesBoards(panel, boards)
	if err == nil {
		t.Fatal("Expected error for unknown board, got nil")
	}
	if !strings.Contains(err.Error(), "io_board") {
		t.Errorf("error %q should name the missing board", err)
	}
}
