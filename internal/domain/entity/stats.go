package entity

import "sort"

// AirlineCount pairs an airline with how many logged flights used it.
type AirlineCount struct {
	Airline string `json:"airline"`
	Count   int    `json:"count"`
}

// FlightStats are aggregate figures over a sequence of records. Pointer
// fields are nil when no record qualifies.
type FlightStats struct {
	TotalFlights         int            `json:"totalFlights"`
	TotalDistance        int            `json:"totalDistance"`
	DistinctAirlines     int            `json:"distinctAirlines"`
	DistinctDestinations int            `json:"distinctDestinations"`
	TopAirlines          []AirlineCount `json:"topAirlines"`
	Earliest             *FlightRecord  `json:"earliest,omitempty"`
	Latest               *FlightRecord  `json:"latest,omitempty"`
	Longest              *FlightRecord  `json:"longest,omitempty"`
	Shortest             *FlightRecord  `json:"shortest,omitempty"`
}

// ComputeStatistics is a pure function over the given records. Missing
// distance counts as zero for the total; longest/shortest only consider
// records with a defined positive distance. Top-airline ties keep
// first-encountered order.
func ComputeStatistics(records []FlightRecord) FlightStats {
	stats := FlightStats{TotalFlights: len(records)}

	airlines := make(map[string]int)
	airlineOrder := make(map[string]int)
	destinations := make(map[string]struct{})

	for i := range records {
		rec := records[i]

		if rec.Distance != nil {
			stats.TotalDistance += *rec.Distance
		}

		if _, seen := airlines[rec.Airline]; !seen {
			airlineOrder[rec.Airline] = len(airlineOrder)
		}
		airlines[rec.Airline]++
		destinations[rec.Destination] = struct{}{}

		if stats.Earliest == nil || rec.Date < stats.Earliest.Date {
			stats.Earliest = &records[i]
		}
		if stats.Latest == nil || rec.Date > stats.Latest.Date {
			stats.Latest = &records[i]
		}

		if rec.Distance != nil && *rec.Distance > 0 {
			if stats.Longest == nil || *rec.Distance > *stats.Longest.Distance {
				stats.Longest = &records[i]
			}
			if stats.Shortest == nil || *rec.Distance < *stats.Shortest.Distance {
				stats.Shortest = &records[i]
			}
		}
	}

	stats.DistinctAirlines = len(airlines)
	stats.DistinctDestinations = len(destinations)

	top := make([]AirlineCount, 0, len(airlines))
	for airline, count := range airlines {
		top = append(top, AirlineCount{Airline: airline, Count: count})
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return airlineOrder[top[i].Airline] < airlineOrder[top[j].Airline]
	})
	if len(top) > 5 {
		top = top[:5]
	}
	if len(top) > 0 {
		stats.TopAirlines = top
	}

	return stats
}
