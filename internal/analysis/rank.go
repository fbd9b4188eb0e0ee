package analysis

import (
	"sort"

	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/schedule"
)

// House pairs a name with the constructed models needed to score it.
type House struct {
	Name      string
	Structure *model.Structure
	Equipment *model.Equipment
	Schedule  *schedule.Schedule
}

type RankedPotential struct {
	FlexibilityPotential
}

// RankBySavings scores every house against the same forecast window and
// sorts descending by OracleSavings.
func RankBySavings(houses []House, series string, f *model.Forecast) []RankedPotential {
	out := make([]RankedPotential, 0, len(houses))
	for _, h := range houses {
		p := ComputePotential(h.Name, series, h.Structure, h.Equipment, h.Schedule, f)
		out = append(out, RankedPotential{FlexibilityPotential: p})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OracleSavings > out[j].OracleSavings
	})
	return out
}
