package catalog

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"leadrouter/internal/model"
)

// Models serves car models parsed from the plain-text catalog. Like
// Branches it reloads the file when an ID is not cached.
type Models struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	cache []model.CarModel
}

func NewModels(path string, logger *slog.Logger) *Models {
	return &Models{path: path, logger: logger}
}

// GetModelByID returns false for empty or unknown IDs.
func (m *Models) GetModelByID(id string) (model.CarModel, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.CarModel{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cm, ok := findModel(m.cache, id); ok {
		return cm, true
	}

	m.cache = m.load()
	cm, ok := findModel(m.cache, id)
	if !ok && m.logger != nil {
		m.logger.Warn("car_model_not_found", "model_id", id, "path", m.path)
	}
	return cm, ok
}

func findModel(models []model.CarModel, id string) (model.CarModel, bool) {
	for _, cm := range models {
		if cm.ModelID == id {
			return cm, true
		}
	}
	return model.CarModel{}, false
}

func (m *Models) load() []model.CarModel {
	f, err := os.Open(m.path)
	if err != nil {
		if m.logger != nil {
			m.logger.Error("car_models_read_failed", "path", m.path, "error", err.Error())
		}
		return nil
	}
	defer f.Close()

	models, err := ParseModels(f)
	if err != nil && m.logger != nil {
		m.logger.Error("car_models_parse_failed", "path", m.path, "error", err.Error())
	}
	return models
}

// ParseModels reads the catalog format: blocks starting with "Model ID:",
// followed by "Key: value" lines and an optional "Features:" list of
// "  - item" lines. Separator lines of '=' or '-' are ignored.
func ParseModels(r io.Reader) ([]model.CarModel, error) {
	var (
		models     []model.CarModel
		cur        *model.CarModel
		inFeatures bool
	)

	flush := func() {
		if cur != nil {
			models = append(models, *cur)
		}
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")

		if inFeatures {
			if strings.HasPrefix(line, "  -") {
				if feature := strings.TrimSpace(strings.TrimPrefix(line, "  -")); feature != "" && cur != nil {
					cur.Features = append(cur.Features, feature)
				}
				continue
			}
			inFeatures = false
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "====") || strings.HasPrefix(trimmed, "----") {
			continue
		}

		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "Model ID" {
			flush()
			cur = &model.CarModel{ModelID: value}
			continue
		}
		if cur == nil {
			continue
		}

		switch key {
		case "Brand":
			cur.Brand = value
		case "Model":
			cur.Model = value
		case "Year":
			cur.Year = value
		case "Category":
			cur.Category = value
		case "Engine":
			cur.Engine = value
		case "Price Range":
			cur.PriceRange = value
		case "Fuel Economy":
			cur.FuelEconomy = value
		case "Availability":
			cur.Availability = value
		case "Lead Time":
			cur.LeadTime = value
		case "Warranty":
			cur.Warranty = value
		case "Popular":
			cur.Popular = value
		case "Features":
			inFeatures = true
		}
	}
	flush()

	if err := sc.Err(); err != nil {
		return models, fmt.Errorf("scan car models: %w", err)
	}
	return models, nil
}
