package routing

import (
	"encoding/json"
	"os"

	"github.com/deskline/backend/internal/models"
)

// Routing classes. Each maps to an ordered list of candidate desks; a ticket
// always lands on the first desk of its class.
const (
	ClassDefault = "default"
	ClassDesign  = "design"
	ClassForeign = "foreign"
	ClassMaster  = "master"
	ClassArmy    = "army"
)

// Table maps a routing class to its ordered desk list. It is configuration
// data, loaded per allocation and never mutated at runtime.
type Table map[string][]int

type tableFile struct {
	Desks map[string][]int `json:"desks"`
}

// Load reads the desk table from a JSON config file. A missing file is not an
// error: it yields an empty table, so every ticket is created without a desk
// and has to be assigned manually.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, nil
		}
		return nil, err
	}
	var f tableFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Desks == nil {
		return Table{}, nil
	}
	return Table(f.Desks), nil
}

func (t Table) first(class string) *int {
	desks := t[class]
	if len(desks) == 0 {
		return nil
	}
	d := desks[0]
	return &d
}

// Route resolves the desk for a new ticket from its service, category, track
// and profile. Online tickets never get a desk. A nil result for any other
// service means the table had no desk for the resolved class; the ticket is
// still created, in a degraded unassigned state.
func Route(service, category, track, profile string, tbl Table) *int {
	if service == models.ServiceOnline {
		return nil
	}

	if service == models.ServiceConsultation {
		if track == "design" {
			return tbl.first(ClassDesign)
		}
		return byCategory(category, tbl)
	}

	if service == models.ServiceAdmission || service == models.ServiceContest {
		if profile == "creative" {
			return tbl.first(ClassDesign)
		}
		return byCategory(category, tbl)
	}

	return tbl.first(ClassDefault)
}

func byCategory(category string, tbl Table) *int {
	switch category {
	case "foreign":
		return tbl.first(ClassForeign)
	case "master":
		return tbl.first(ClassMaster)
	case "army":
		return tbl.first(ClassArmy)
	}
	return tbl.first(ClassDefault)
}
