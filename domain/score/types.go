package score

import "fmt"

// Field names a projected column of the weekly score export.
type Field string

// Column headers of the WeekScoreManage export.
const (
	FieldBuilding Field = "楼号"
	FieldWeek     Field = "周"
	FieldRoom     Field = "房间"
	FieldBed      Field = "床位"
	FieldScore    Field = "总分"
	FieldNote     Field = "整改意见"
)

// ProjectedFields lists the six columns kept from every input row, in export order.
var ProjectedFields = []Field{FieldBuilding, FieldWeek, FieldRoom, FieldBed, FieldScore, FieldNote}

// RenderedFields lists the four fields of one column-block, left to right.
var RenderedFields = []Field{FieldRoom, FieldBed, FieldScore, FieldNote}

// Record is one bed's weekly inspection result. A missing value is the empty string.
type Record struct {
	Building string `json:"building" yaml:"building"`
	Week     string `json:"week" yaml:"week"`
	Room     string `json:"room" yaml:"room"`
	Bed      string `json:"bed" yaml:"bed"`
	Score    string `json:"score" yaml:"score"`
	Note     string `json:"note" yaml:"note"`
}

// Key is the uniqueness key of a record.
type Key struct {
	Building string
	Room     string
	Bed      string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Building, k.Room, k.Bed)
}

// Key returns the (building, room, bed) key of the record.
func (r Record) Key() Key {
	return Key{Building: r.Building, Room: r.Room, Bed: r.Bed}
}

// Value returns the raw value of a field.
func (r Record) Value(f Field) string {
	switch f {
	case FieldBuilding:
		return r.Building
	case FieldWeek:
		return r.Week
	case FieldRoom:
		return r.Room
	case FieldBed:
		return r.Bed
	case FieldScore:
		return r.Score
	case FieldNote:
		return r.Note
	}
	return ""
}

// Title is the report heading: building followed by week label.
func (r Record) Title() string {
	return r.Building + r.Week
}

// Anomaly records a blank or invalid rendered cell.
type Anomaly struct {
	Cell   string `json:"cell" yaml:"cell"`
	Row    int    `json:"row" yaml:"row"`
	Column int    `json:"column" yaml:"column"`
	Field  Field  `json:"field" yaml:"field"`
	Value  string `json:"value" yaml:"value"`
	Key    string `json:"key" yaml:"key"`
}
