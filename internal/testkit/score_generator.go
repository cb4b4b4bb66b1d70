package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"dormscore/domain/score"
)

// ScoreGeneratorConfig configures the synthetic weekly score generator
type ScoreGeneratorConfig struct {
	Building      string  `json:"building"`
	Week          string  `json:"week"`
	Floors        int     `json:"floors"`
	RoomsPerFloor int     `json:"rooms_per_floor"`
	BedsPerRoom   int     `json:"beds_per_room"`
	MissingRate   float64 `json:"missing_rate"` // share of records with a blank score
	Seed          int64   `json:"seed"`
}

// DefaultScoreConfig returns one building's week with 4 floors of 8 rooms and 4 beds.
func DefaultScoreConfig() ScoreGeneratorConfig {
	return ScoreGeneratorConfig{
		Building:      "紫荆1号楼",
		Week:          "第1周",
		Floors:        4,
		RoomsPerFloor: 8,
		BedsPerRoom:   4,
		Seed:          42,
	}
}

var notes = []string{"", "桌面整洁", "地面有垃圾", "床铺未整理", "阳台杂物较多", "good"}

// ScoreDataGenerator generates weekly inspection records for one building
type ScoreDataGenerator struct {
	config ScoreGeneratorConfig
	rng    *rand.Rand
}

// NewScoreDataGenerator creates a new generator
func NewScoreDataGenerator(config ScoreGeneratorConfig) *ScoreDataGenerator {
	return &ScoreDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Count is the number of distinct (room, bed) records the config produces.
func (c ScoreGeneratorConfig) Count() int {
	return c.Floors * c.RoomsPerFloor * c.BedsPerRoom
}

// GenerateRecords produces one record per bed, in inspection order (floor by
// floor, bed 1 first). Scores are integers 60..100; notes are never blank so
// only MissingRate controls empty cells.
func (g *ScoreDataGenerator) GenerateRecords() []score.Record {
	records := make([]score.Record, 0, g.config.Count())
	for floor := 1; floor <= g.config.Floors; floor++ {
		for room := 1; room <= g.config.RoomsPerFloor; room++ {
			for bed := 1; bed <= g.config.BedsPerRoom; bed++ {
				records = append(records, g.record(floor*100+room, bed))
			}
		}
	}
	return records
}

func (g *ScoreDataGenerator) record(room, bed int) score.Record {
	s := strconv.Itoa(60 + g.rng.Intn(41))
	if g.config.MissingRate > 0 && g.rng.Float64() < g.config.MissingRate {
		s = ""
	}
	note := notes[g.rng.Intn(len(notes))]
	if note == "" {
		note = "无"
	}
	return score.Record{
		Building: g.config.Building,
		Week:     g.config.Week,
		Room:     strconv.Itoa(room),
		Bed:      strconv.Itoa(bed),
		Score:    s,
		Note:     note,
	}
}

// Split deals records round-robin into n exports, as the inspection system
// does when several inspectors cover one building.
func Split(records []score.Record, n int) [][]score.Record {
	if n < 1 {
		n = 1
	}
	parts := make([][]score.Record, n)
	for i, r := range records {
		parts[i%n] = append(parts[i%n], r)
	}
	return parts
}

// ExportName returns the file name of the i-th export.
func ExportName(prefix string, i int) string {
	return fmt.Sprintf("%s_%03d.csv", prefix, i)
}
