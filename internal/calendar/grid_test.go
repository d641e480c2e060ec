package calendar

import (
	"errors"
	"testing"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name        string
		year, month int
		want        int
	}{
		{"leap February", 2024, 1, 29},
		{"common February", 2023, 1, 28},
		{"century non-leap", 1900, 1, 28},
		{"quad-century leap", 2000, 1, 29},
		{"January", 2024, 0, 31},
		{"April", 2024, 3, 30},
		{"December", 2024, 11, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysInMonth(tt.year, tt.month); got != tt.want {
				t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestFirstWeekday(t *testing.T) {
	// 2015-02-01 was a Sunday, 2025-03-01 a Saturday, 2024-01-01 a Monday.
	cases := map[[2]int]int{
		{2015, 1}: 0,
		{2025, 2}: 6,
		{2024, 0}: 1,
	}
	for ym, want := range cases {
		if got := FirstWeekday(ym[0], ym[1]); got != want {
			t.Errorf("FirstWeekday(%d, %d) = %d, want %d", ym[0], ym[1], got, want)
		}
	}
}

func TestBuildMonthGridShapes(t *testing.T) {
	tests := []struct {
		name        string
		year, month int
		wantRows    int
		wantLastLen int
	}{
		{"28 days starting Sunday", 2015, 1, 4, 7},
		{"31 days starting Saturday", 2025, 2, 6, 2},
		{"30 days starting Saturday", 2024, 5, 6, 1},
		{"leap February starting Thursday", 2024, 1, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildMonthGrid(tt.year, tt.month)
			if err != nil {
				t.Fatalf("BuildMonthGrid() error = %v", err)
			}
			if len(g.Rows) != tt.wantRows {
				t.Fatalf("rows = %d, want %d", len(g.Rows), tt.wantRows)
			}
			if got := len(g.Rows[len(g.Rows)-1]); got != tt.wantLastLen {
				t.Errorf("last row length = %d, want %d", got, tt.wantLastLen)
			}
		})
	}
}

func TestBuildMonthGridCellCountEveryMonth(t *testing.T) {
	for year := 1999; year <= 2030; year++ {
		for month := 0; month < 12; month++ {
			g, err := BuildMonthGrid(year, month)
			if err != nil {
				t.Fatalf("BuildMonthGrid(%d, %d) error = %v", year, month, err)
			}

			total := 0
			for i, row := range g.Rows {
				if i < len(g.Rows)-1 && len(row) != DaysPerWeek {
					t.Fatalf("%d/%d: row %d has %d cells", year, month, i, len(row))
				}
				if len(row) == 0 || len(row) > DaysPerWeek {
					t.Fatalf("%d/%d: row %d has %d cells", year, month, i, len(row))
				}
				total += len(row)
			}

			want := FirstWeekday(year, month) + DaysInMonth(year, month)
			if total != want {
				t.Errorf("%d/%d: %d cells, want %d", year, month, total, want)
			}
		}
	}
}

func TestBuildMonthGridCells(t *testing.T) {
	g, err := BuildMonthGrid(2024, 0)
	if err != nil {
		t.Fatalf("BuildMonthGrid() error = %v", err)
	}

	cells := g.Cells()
	if !cells[0].Blank() || cells[0].Key != "" {
		t.Errorf("first cell = %+v, want a blank", cells[0])
	}
	first := cells[1]
	if first.Day != 1 || first.Key != "2024/00/01" {
		t.Errorf("first day cell = %+v", first)
	}

	row, col, ok := g.Locate(15)
	if !ok {
		t.Fatal("Locate(15) not found")
	}
	if cell := g.Rows[row][col]; cell.Key != "2024/00/15" {
		t.Errorf("cell at Locate(15) = %+v", cell)
	}
	if _, _, ok := g.Locate(32); ok {
		t.Error("Locate(32) should fail for January")
	}
	if g.MonthName() != "January" {
		t.Errorf("MonthName() = %q", g.MonthName())
	}
}

func TestBuildMonthGridDeterministic(t *testing.T) {
	a, _ := BuildMonthGrid(2026, 9)
	b, _ := BuildMonthGrid(2026, 9)
	ac, bc := a.Cells(), b.Cells()
	if len(ac) != len(bc) {
		t.Fatalf("lengths differ: %d vs %d", len(ac), len(bc))
	}
	for i := range ac {
		if ac[i] != bc[i] {
			t.Fatalf("cell %d differs: %+v vs %+v", i, ac[i], bc[i])
		}
	}
}

func TestBuildMonthGridInvalidMonth(t *testing.T) {
	for _, m := range []int{-1, 12} {
		if _, err := BuildMonthGrid(2024, m); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("BuildMonthGrid(2024, %d) error = %v, want ErrInvalidDate", m, err)
		}
	}
}
