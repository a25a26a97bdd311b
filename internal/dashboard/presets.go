package dashboard

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightwater-dev/leadboard/internal/models"
)

// PresetStore holds saved filter presets for the life of the process. The web
// client keeps its own copy in local storage, so losing these on restart only
// costs cross-browser sync.
type PresetStore struct {
	mu      sync.RWMutex
	presets map[string]models.FilterPreset
	now     func() time.Time
}

func NewPresetStore() *PresetStore {
	return &PresetStore{
		presets: make(map[string]models.FilterPreset),
		now:     time.Now,
	}
}

// Save assigns the preset an ID and creation time and stores it.
func (p *PresetStore) Save(preset models.FilterPreset) models.FilterPreset {
	preset.ID = uuid.NewString()
	preset.CreatedAt = p.now().UTC().Format(time.RFC3339)
	if preset.ExcludedSources == nil {
		preset.ExcludedSources = []string{}
	}

	p.mu.Lock()
	p.presets[preset.ID] = preset
	p.mu.Unlock()
	return preset
}

// List returns presets newest first.
func (p *PresetStore) List() []models.FilterPreset {
	p.mu.RLock()
	out := make([]models.FilterPreset, 0, len(p.presets))
	for _, preset := range p.presets {
		out = append(out, preset)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes a preset, reporting whether it existed.
func (p *PresetStore) Delete(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.presets[id]; !ok {
		return false
	}
	delete(p.presets, id)
	return true
}
