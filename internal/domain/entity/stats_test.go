package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flight(airline, dest, date string, distance int) FlightRecord {
	rec := FlightRecord{Airline: airline, Destination: dest, Date: date}
	if distance >= 0 {
		rec.Distance = &distance
	}
	return rec
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil)

	assert.Zero(t, stats.TotalFlights)
	assert.Zero(t, stats.TotalDistance)
	assert.Zero(t, stats.DistinctAirlines)
	assert.Zero(t, stats.DistinctDestinations)
	assert.Empty(t, stats.TopAirlines)
	assert.Nil(t, stats.Earliest)
	assert.Nil(t, stats.Latest)
	assert.Nil(t, stats.Longest)
	assert.Nil(t, stats.Shortest)
}

func TestComputeStatistics_Totals(t *testing.T) {
	records := []FlightRecord{
		flight("KLM", "AMS", "2024-03-01", 2150),
		flight("KLM", "AMS", "2024-04-01", -1), // no distance, counts as 0
		flight("Lufthansa", "FRA", "2023-11-20", 1800),
	}

	stats := ComputeStatistics(records)

	assert.Equal(t, 3, stats.TotalFlights)
	assert.Equal(t, 3950, stats.TotalDistance)
	assert.Equal(t, 2, stats.DistinctAirlines)
	assert.Equal(t, 2, stats.DistinctDestinations)

	require.NotNil(t, stats.Earliest)
	assert.Equal(t, "2023-11-20", stats.Earliest.Date)
	require.NotNil(t, stats.Latest)
	assert.Equal(t, "2024-04-01", stats.Latest.Date)
}

func TestComputeStatistics_TopAirlinesTieOrder(t *testing.T) {
	records := []FlightRecord{
		flight("Alpha", "AAA", "2024-01-01", -1),
		flight("Beta", "BBB", "2024-01-02", -1),
		flight("Beta", "BBB", "2024-01-03", -1),
		flight("Gamma", "CCC", "2024-01-04", -1), // tie with Alpha, encountered later
	}

	stats := ComputeStatistics(records)

	require.Len(t, stats.TopAirlines, 3)
	assert.Equal(t, AirlineCount{Airline: "Beta", Count: 2}, stats.TopAirlines[0])
	assert.Equal(t, AirlineCount{Airline: "Alpha", Count: 1}, stats.TopAirlines[1])
	assert.Equal(t, AirlineCount{Airline: "Gamma", Count: 1}, stats.TopAirlines[2])
}

func TestComputeStatistics_TopAirlinesCapsAtFive(t *testing.T) {
	var records []FlightRecord
	for _, a := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		records = append(records, flight(a, a, "2024-01-01", -1))
	}

	stats := ComputeStatistics(records)
	assert.Len(t, stats.TopAirlines, 5)
}

func TestComputeStatistics_LongestShortestNeedPositiveDistance(t *testing.T) {
	records := []FlightRecord{
		flight("A", "AAA", "2024-01-01", 0), // zero distance never qualifies
		flight("B", "BBB", "2024-01-02", -1),
	}

	stats := ComputeStatistics(records)
	assert.Nil(t, stats.Longest)
	assert.Nil(t, stats.Shortest)

	records = append(records,
		flight("C", "CCC", "2024-01-03", 500),
		flight("D", "DDD", "2024-01-04", 9000),
	)
	stats = ComputeStatistics(records)

	require.NotNil(t, stats.Longest)
	assert.Equal(t, 9000, *stats.Longest.Distance)
	require.NotNil(t, stats.Shortest)
	assert.Equal(t, 500, *stats.Shortest.Distance)
}
