package engine

import "encoding/json"

// ============================================================================
// SHARED FIXTURES
// ============================================================================
//
//  #  date         state            species      activity  prov  gender  age  time
//  1  2020-01-15   NSW              white shark  surfing   U     male    25   14:35
//  2  2019-03-10   New South Wales  white shark  swimming  P     female  70   07:00
//  3  2021-06-??   WA               tiger shark  surfing   U     male    -    19:10
//  4  2018-12-25   QLD              bull shark   fishing   P     -       40   -
//  5  ????-02-03   Atlantis         white shark  surfing   U     male    16   1435
//  6  2020-02-30   Victoria         tiger shark  -         P     female  10   23:59

func sampleRaw() []Incident {
	return []Incident{
		{
			Year: Int(2020), Month: Int(1), Day: Int(15),
			State: "NSW", Latitude: Float(-33.89), Longitude: Float(151.27),
			SharkName: "white shark", Activity: "surfing", Provocation: "unprovoked",
			Injury: "Injured", Gender: "male", Age: Float(25), IncidentTime: "14:35",
		},
		{
			Year: Int(2019), Month: Int(3), Day: Int(10),
			State: "New South Wales", Latitude: Float(-30.3), Longitude: Float(153.1),
			SharkName: "white shark", Activity: "swimming", Provocation: "provoked",
			Injury: "fatal", Gender: "female", Age: Float(70), IncidentTime: "07:00",
		},
		{
			Year: Int(2021), Month: Int(6),
			State: "WA", Longitude: Float(115.7),
			SharkName: "tiger shark", Activity: "surfing", Provocation: "unprovoked",
			Injury: "injured", Gender: "male", IncidentTime: "19:10",
		},
		{
			Year: Int(2018), Month: Int(12), Day: Int(25),
			State: "QLD", Latitude: Float(-16.9), Longitude: Float(145.8),
			SharkName: "bull shark", Activity: "fishing", Provocation: "provoked",
			Injury: "uninjured", Age: Float(40),
		},
		{
			Month: Int(2), Day: Int(3),
			State:     "Atlantis",
			SharkName: "white shark", Activity: "surfing", Provocation: "unprovoked",
			Injury: "Injured", Gender: "male", Age: Float(16), IncidentTime: "1435",
		},
		{
			Year: Int(2020), Month: Int(2), Day: Int(30),
			State:     "Victoria",
			SharkName: "tiger shark", Provocation: "provoked",
			Gender: "female", Age: Float(10), IncidentTime: "23:59",
		},
	}
}

func sampleDataset() *Dataset {
	return NewDataset(sampleRaw())
}

// years returns the Year of each incident, -1 for missing.
func years(view View) []int {
	out := make([]int, view.Len())
	for i := range out {
		y := view.At(i).Year
		if y.Valid {
			out[i] = y.Int
		} else {
			out[i] = -1
		}
	}
	return out
}

// states returns the raw State of each incident.
func states(view View) []string {
	out := make([]string, view.Len())
	for i := range out {
		out[i] = view.At(i).State
	}
	return out
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
