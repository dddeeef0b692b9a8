package entity

// Observation is the passive state of the daily-action control.
type Observation struct {
	Label    string
	Disabled bool
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
