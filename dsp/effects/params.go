package effects

// ParamInfo describes one scalar control of an effect unit. The control
// layer uses the schema to build its surface and is responsible for
// clamping values to [Min, Max] before calling the setters.
type ParamInfo struct {
	Name    string
	Default float64
	Min     float64
	Max     float64
}

// Processor is the per-block contract shared by every unit.
//
// Process reads one block from in and writes an equal-length block to out,
// returning false (without touching out) when the input reference is absent.
// It must be called from a single goroutine, typically the platform's
// real-time audio callback.
type Processor interface {
	Process(in, out [][]float64) bool
	Params() []ParamInfo
	Reset()
}
