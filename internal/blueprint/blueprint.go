package blueprint

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Segment is one named, costed unit of the build.
type Segment struct {
	Key        string `yaml:"key" json:"key"`
	Label      string `yaml:"label" json:"label"`
	Cost       int    `yaml:"cost" json:"cost"`
	Phase      string `yaml:"phase" json:"phase"`
	OrderIndex int    `yaml:"order" json:"order"`
}

// Blueprint is the immutable ordered segment list for a build.
// Loaded once per process and never mutated afterwards.
type Blueprint struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Segments []Segment `yaml:"segments" json:"segments"`
}

//go:embed galleon.yaml
var defaultYAML []byte

var defaultBlueprint = sync.OnceValue(func() *Blueprint {
	bp, err := Parse(defaultYAML)
	if err != nil {
		// The embedded blueprint is validated by tests; a parse failure
		// here means a broken build, not a runtime condition.
		panic(fmt.Sprintf("embedded blueprint: %v", err))
	}
	return bp
})

// Default returns the embedded galleon blueprint.
func Default() *Blueprint {
	return defaultBlueprint()
}

// LoadFile reads and validates a blueprint from a YAML file.
func LoadFile(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blueprint file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML blueprint document.
func Parse(data []byte) (*Blueprint, error) {
	var bp Blueprint
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("parse blueprint: %w", err)
	}
	if err := bp.validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(bp.Segments, func(i, j int) bool {
		return bp.Segments[i].OrderIndex < bp.Segments[j].OrderIndex
	})
	return &bp, nil
}

func (bp *Blueprint) validate() error {
	if bp.ID == "" {
		return fmt.Errorf("blueprint is missing an id")
	}
	if len(bp.Segments) == 0 {
		return fmt.Errorf("blueprint %q has no segments", bp.ID)
	}
	keys := make(map[string]bool, len(bp.Segments))
	orders := make(map[int]bool, len(bp.Segments))
	for _, seg := range bp.Segments {
		if seg.Key == "" {
			return fmt.Errorf("blueprint %q has a segment with an empty key", bp.ID)
		}
		if seg.Cost <= 0 {
			return fmt.Errorf("segment %q has non-positive cost %d", seg.Key, seg.Cost)
		}
		if keys[seg.Key] {
			return fmt.Errorf("duplicate segment key %q", seg.Key)
		}
		if orders[seg.OrderIndex] {
			return fmt.Errorf("duplicate order index %d on segment %q", seg.OrderIndex, seg.Key)
		}
		keys[seg.Key] = true
		orders[seg.OrderIndex] = true
	}
	return nil
}

// Segment returns the segment with the given key.
func (bp *Blueprint) Segment(key string) (Segment, bool) {
	for _, seg := range bp.Segments {
		if seg.Key == key {
			return seg, true
		}
	}
	return Segment{}, false
}

// TotalCost is the sum of all segment costs.
func (bp *Blueprint) TotalCost() int {
	total := 0
	for _, seg := range bp.Segments {
		total += seg.Cost
	}
	return total
}
