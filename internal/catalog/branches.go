package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"leadrouter/internal/model"
)

// Branches reads dealership branches from the first sheet of an Excel
// workbook (header row, then one branch per row). Lookups are served from
// a cache that is reloaded whenever an ID is missing.
type Branches struct {
	path      string
	defaultID int
	logger    *slog.Logger

	mu    sync.Mutex
	cache []model.Branch
}

func NewBranches(path string, defaultID int, logger *slog.Logger) *Branches {
	return &Branches{path: path, defaultID: defaultID, logger: logger}
}

// GetBranchByID never fails: unknown IDs resolve to the default branch.
func (b *Branches) GetBranchByID(id int) model.Branch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if br, ok := findBranch(b.cache, id); ok {
		return br
	}

	b.cache = b.load()
	if br, ok := findBranch(b.cache, id); ok {
		return br
	}

	if b.logger != nil {
		b.logger.Warn("branch_not_found", "branch_id", id, "default_branch_id", b.defaultID)
	}
	return b.defaultBranch()
}

func (b *Branches) defaultBranch() model.Branch {
	if br, ok := findBranch(b.cache, b.defaultID); ok {
		return br
	}
	return model.Branch{
		BranchID:     b.defaultID,
		Name:         "Tel Aviv Showroom",
		Region:       "Center",
		City:         "Tel Aviv",
		Address:      "Menachem Begin Rd 132, Tel Aviv",
		Manager:      "David Cohen",
		Email:        "telaviv@dealership.co.il",
		Phone:        "03-5551234",
		WorkingHours: "Sun-Thu 9:00-19:00, Fri 9:00-14:00",
		Specialties:  "Luxury, Electric, SUV",
		Languages:    "Hebrew, English, Russian",
	}
}

func findBranch(branches []model.Branch, id int) (model.Branch, bool) {
	for _, br := range branches {
		if br.BranchID == id {
			return br, true
		}
	}
	return model.Branch{}, false
}

// load returns an empty list when the workbook is missing or unreadable
// so that lookups degrade to the default branch.
func (b *Branches) load() []model.Branch {
	branches, err := ReadBranchWorkbook(b.path)
	if err != nil {
		if b.logger != nil {
			b.logger.Error("branch_workbook_read_failed", "path", b.path, "error", err.Error())
		}
		return nil
	}
	return branches
}

// ReadBranchWorkbook parses the branch workbook at path. Rows without a
// positive numeric branch ID are skipped.
func ReadBranchWorkbook(path string) ([]model.Branch, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("branch workbook: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open branch workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var branches []model.Branch
	for i, row := range rows {
		if i == 0 {
			continue
		}
		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		id, err := strconv.Atoi(cell(0))
		if err != nil || id <= 0 {
			continue
		}
		branches = append(branches, model.Branch{
			BranchID:     id,
			Name:         cell(1),
			Region:       cell(2),
			City:         cell(3),
			Address:      cell(4),
			Manager:      cell(5),
			Email:        cell(6),
			Phone:        cell(7),
			WorkingHours: cell(8),
			Specialties:  cell(9),
			Languages:    cell(10),
		})
	}
	return branches, nil
}
