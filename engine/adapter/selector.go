package adapter

import (
	"github.com/Carmen-Shannon/oxy-sandbox/common"
)

// Select picks one adapter from adapters according to req.
//
// An in-bounds req.Index wins outright. Otherwise the first adapter matching
// req.Class is taken. When neither applies the best adapter by class
// (Discrete > Integrated > Software > Unknown), then by total memory, is
// returned; equal candidates keep the lowest index. An out-of-bounds index or
// an unmatched class is logged as a warning and ignored.
//
// Parameters:
//   - adapters: the adapters in enumeration order
//   - req: the caller's preference
//
// Returns:
//   - Selection: the chosen index and its class
//   - error: ErrNoAdaptersFound if adapters is empty
func Select(adapters []Info, req Request) (Selection, error) {
	if len(adapters) == 0 {
		return Selection{}, ErrNoAdaptersFound
	}

	log := common.Logger()

	if req.Index != nil {
		i := *req.Index
		if i >= 0 && i < len(adapters) {
			return Selection{Index: i, Class: adapters[i].Class}, nil
		}
		log.Warn("requested adapter index out of range, using default selection",
			"index", i, "count", len(adapters))
	}

	if req.Class != nil {
		for i, a := range adapters {
			if a.Class == *req.Class {
				return Selection{Index: i, Class: a.Class}, nil
			}
		}
		log.Warn("no adapter of requested class, using default selection",
			"class", req.Class.String())
	}

	best := Selection{Index: 0, Class: adapters[0].Class}
	bestMemory := adapters[0].Memory.Total()
	for i := 1; i < len(adapters); i++ {
		a := adapters[i]
		total := a.Memory.Total()
		if a.Class > best.Class || (a.Class == best.Class && total > bestMemory) {
			best = Selection{Index: i, Class: a.Class}
			bestMemory = total
		}
	}
	return best, nil
}
