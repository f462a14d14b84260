// Package geo serves the Philippine administrative geography used by the
// address picker: region, province, city or municipality, barangay.
package geo

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

//go:embed psgc.json
var embedded []byte

type Level int

const (
	LevelRegion Level = iota
	LevelProvince
	LevelCity
	LevelBarangay
)

var levelNames = [...]string{"region", "province", "city", "barangay"}

func (l Level) String() string {
	if l < LevelRegion || l > LevelBarangay {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

func (l Level) Valid() bool {
	return l >= LevelRegion && l <= LevelBarangay
}

// Area is one entry at any level.
type Area struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ParentCode string `json:"parent_code,omitempty"`
	Level      Level  `json:"-"`
}

var ErrUnknownLevel = errors.New("unknown geography level")

type node struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Children []node `json:"children"`
}

type document struct {
	Regions []node `json:"regions"`
}

// Dataset is read-only after Load and safe for concurrent use.
type Dataset struct {
	regions  []Area
	children map[string][]Area
	byCode   map[string]Area
}

// Load reads the dataset at path, or the embedded one when path is empty.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Parse(embedded)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geography dataset: %w", err)
	}
	return Parse(raw)
}

// Default returns the embedded dataset. It panics if the embedded file is
// broken, which the tests rule out.
func Default() *Dataset {
	d, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return d
}

// Parse builds a dataset from nested JSON. Codes must be unique and every
// barangay must sit four levels deep.
func Parse(raw []byte) (*Dataset, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode geography dataset: %w", err)
	}
	if len(doc.Regions) == 0 {
		return nil, errors.New("geography dataset has no regions")
	}

	d := &Dataset{
		children: make(map[string][]Area),
		byCode:   make(map[string]Area),
	}
	for _, region := range doc.Regions {
		if err := d.add(region, "", LevelRegion); err != nil {
			return nil, err
		}
	}
	d.regions = d.children[""]
	delete(d.children, "")

	return d, nil
}

func (d *Dataset) add(n node, parent string, level Level) error {
	if !level.Valid() {
		return fmt.Errorf("area %s nested below barangay level", n.Code)
	}
	if n.Code == "" || n.Name == "" {
		return fmt.Errorf("%s under %q has empty code or name", level, parent)
	}
	if _, dup := d.byCode[n.Code]; dup {
		return fmt.Errorf("duplicate area code %s", n.Code)
	}

	area := Area{Code: n.Code, Name: n.Name, ParentCode: parent, Level: level}
	d.byCode[n.Code] = area
	d.children[parent] = append(d.children[parent], area)

	for _, child := range n.Children {
		if err := d.add(child, n.Code, level+1); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dataset) Regions() []Area {
	return clone(d.regions)
}

// Children lists the areas directly below parentCode. An unknown code
// yields an empty list.
func (d *Dataset) Children(parentCode string) []Area {
	return clone(d.children[parentCode])
}

func (d *Dataset) Lookup(code string) (Area, bool) {
	area, ok := d.byCode[code]
	return area, ok
}

// Options lists the choices at level under parentCode. Regions ignore
// parentCode. Results only come from level, so a province code passed for
// LevelBarangay yields nothing.
func (d *Dataset) Options(_ context.Context, level Level, parentCode string) ([]Area, error) {
	if !level.Valid() {
		return nil, ErrUnknownLevel
	}
	if level == LevelRegion {
		return d.Regions(), nil
	}

	out := make([]Area, 0, len(d.children[parentCode]))
	for _, area := range d.children[parentCode] {
		if area.Level == level {
			out = append(out, area)
		}
	}
	return out, nil
}

func clone(areas []Area) []Area {
	out := make([]Area, len(areas))
	copy(out, areas)
	return out
}
