package repository

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/tasting-service/internal/event"
	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/model"
)

// Seed is the on-disk description of a service: the menus, the floor and
// the evening's bookings.
//
//	menus:
//	  - id: classic
//	    name: Classic
//	    courses: [Oyster, Bread, Lamb]
//	tables:
//	  - id: 1
//	    name: T1
//	    pax: 2
//	reservations:
//	  - id: r1
//	    guestName: Smith
//	    pax: 2
//	    menuId: classic
type Seed struct {
	Menus        []model.Menu        `yaml:"menus"`
	Tables       []model.Table       `yaml:"tables"`
	Reservations []model.Reservation `yaml:"reservations"`
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(b)
}

// ParseSeed decodes seed YAML.  Table ids must be positive and unique, as
// must menu and booking ids.  Tables start EMPTY unless the file says
// otherwise.
func ParseSeed(b []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}

	tables := map[int]bool{}
	for i := range s.Tables {
		t := &s.Tables[i]
		if t.ID <= 0 {
			return Seed{}, fmt.Errorf("seed table %q: id must be positive", t.Name)
		}
		if tables[t.ID] {
			return Seed{}, fmt.Errorf("seed table %d: duplicate id", t.ID)
		}
		tables[t.ID] = true
		if t.Status == "" {
			t.Status = model.TableEmpty
		}
		if t.Name == "" {
			t.Name = fmt.Sprintf("T%d", t.ID)
		}
	}
	sort.Slice(s.Tables, func(i, j int) bool { return s.Tables[i].ID < s.Tables[j].ID })

	menus := map[string]bool{}
	for _, m := range s.Menus {
		if m.ID == "" || menus[m.ID] {
			return Seed{}, fmt.Errorf("seed menu %q: id missing or duplicated", m.ID)
		}
		menus[m.ID] = true
	}

	bookings := map[string]bool{}
	for _, r := range s.Reservations {
		if r.ID == "" || bookings[r.ID] {
			return Seed{}, fmt.Errorf("seed reservation %q: id missing or duplicated", r.ID)
		}
		bookings[r.ID] = true
		if r.Pax < 1 {
			return Seed{}, fmt.Errorf("seed reservation %q: pax must be at least 1", r.ID)
		}
		if r.MenuID != "" && !menus[r.MenuID] {
			return Seed{}, fmt.Errorf("seed reservation %q: %w: %s", r.ID, ErrMenuNotFound, r.MenuID)
		}
	}
	return s, nil
}

// State returns the replicated part of the seed.
func (s Seed) State() event.State {
	return event.State{Tables: s.Tables, Reservations: s.Reservations}.Clone()
}

// Catalog returns the seed's menus as a lookup.
func (s Seed) Catalog() menu.Catalog {
	return menu.NewCatalog(s.Menus)
}
