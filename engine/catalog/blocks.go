package catalog

import "github.com/voltforge/voltforge/engine/schema"

// Default solver parameters carried through normalization when a document
// supplies none.
const (
	ParamSolver   = "Solver"
	ParamStopTime = "StopTime"

	DefaultSolver   = "ode23t"
	DefaultStopTime = 10
)

// two-terminal port sets shared by most electrical blocks.
var terminals = []PortRole{
	{Suffix: "Positive", Direction: schema.In},
	{Suffix: "Negative", Direction: schema.In},
}

var sourceTerminals = []PortRole{
	{Suffix: "Positive", Direction: schema.Out},
	{Suffix: "Negative", Direction: schema.In},
}

// Default returns the stock block vocabulary: electrical sources, passive
// elements, switches, sensors, mission loads and utility blocks, each with
// its library path and parameter defaults.
func Default() *Catalog {
	return New([]BlockSchema{
		// Sources
		{
			Type: "Battery", LibraryPath: "ee_lib/Sources/Battery",
			Ports: sourceTerminals, Source: true,
			Defaults: map[string]schema.Value{
				"Voltage":         schema.Num(12),
				"InnerResistance": schema.Num(0),
				"Capacity":        schema.Num(50),
			},
		},
		{
			Type: "VoltageSourceDC", LibraryPath: "ee_lib/Sources/Voltage Source",
			Ports: sourceTerminals, Source: true,
			Defaults: map[string]schema.Value{"Voltage": schema.Num(10)},
		},
		{
			Type: "VoltageSourceAC", LibraryPath: "ee_lib/Sources/Voltage Source",
			Ports: sourceTerminals, Source: true,
			Defaults: map[string]schema.Value{
				"Peak":      schema.Num(10),
				"Frequency": schema.Num(50),
				"Phase":     schema.Num(0),
			},
		},
		{
			Type: "CurrentSourceDC", LibraryPath: "ee_lib/Sources/Current Source",
			Ports: sourceTerminals, Source: true,
			Defaults: map[string]schema.Value{"Current": schema.Num(1)},
		},
		{
			Type: "CurrentSourceAC", LibraryPath: "ee_lib/Sources/Current Source",
			Ports: sourceTerminals, Source: true,
			Defaults: map[string]schema.Value{
				"Peak":      schema.Num(1),
				"Frequency": schema.Num(50),
				"Phase":     schema.Num(0),
			},
		},
		{
			Type: "ControlledVoltageSource", LibraryPath: "ee_lib/Sources/Controlled Voltage Source",
			Ports:  append([]PortRole{{Suffix: "Signal", Direction: schema.In, Signal: true}}, sourceTerminals...),
			Source: true,
		},
		{
			Type: "ControlledCurrentSource", LibraryPath: "ee_lib/Sources/Controlled Current Source",
			Ports:  append([]PortRole{{Suffix: "Signal", Direction: schema.In, Signal: true}}, sourceTerminals...),
			Source: true,
		},

		// Passive elements
		{
			Type: "Resistor", LibraryPath: "ee_lib/Passive Devices/Resistor",
			Ports:    terminals,
			Defaults: map[string]schema.Value{"Resistance": schema.Num(1)},
		},
		{
			Type: "Varistor", LibraryPath: "ee_lib/Passive Devices/Varistor",
			Ports:    terminals,
			Defaults: map[string]schema.Value{"Resistance": schema.Num(1)},
		},
		{
			Type: "Capacitor", LibraryPath: "ee_lib/Passive Devices/Capacitor",
			Ports:    terminals,
			Defaults: map[string]schema.Value{"Capacitance": schema.Num(1e-6)},
		},
		{
			Type: "Inductor", LibraryPath: "ee_lib/Passive Devices/Inductor",
			Ports:    terminals,
			Defaults: map[string]schema.Value{"Inductance": schema.Num(1e-3)},
		},
		{
			Type: "Diode", LibraryPath: "ee_lib/Semiconductors & Converters/Diode",
			Ports: []PortRole{
				{Suffix: "Anode", Direction: schema.In},
				{Suffix: "Cathode", Direction: schema.In},
			},
			Defaults: map[string]schema.Value{"ForwardVoltage": schema.Num(0.6)},
		},
		{
			Type: "NChannelMOSFET", LibraryPath: "ee_lib/Semiconductors & Converters/N-Channel MOSFET",
			Ports: []PortRole{
				{Suffix: "Gate", Direction: schema.In},
				{Suffix: "Drain", Direction: schema.In},
				{Suffix: "Source", Direction: schema.In},
			},
		},
		{
			Type: "PChannelMOSFET", LibraryPath: "ee_lib/Semiconductors & Converters/P-Channel MOSFET",
			Ports: []PortRole{
				{Suffix: "Gate", Direction: schema.In},
				{Suffix: "Drain", Direction: schema.In},
				{Suffix: "Source", Direction: schema.In},
			},
		},
		{
			Type: "NPNTransistor", LibraryPath: "ee_lib/Semiconductors & Converters/NPN Bipolar Transistor",
			Ports: []PortRole{
				{Suffix: "Base", Direction: schema.In},
				{Suffix: "Collector", Direction: schema.In},
				{Suffix: "Emitter", Direction: schema.In},
			},
		},
		{
			Type: "PNPTransistor", LibraryPath: "ee_lib/Semiconductors & Converters/PNP Bipolar Transistor",
			Ports: []PortRole{
				{Suffix: "Base", Direction: schema.In},
				{Suffix: "Collector", Direction: schema.In},
				{Suffix: "Emitter", Direction: schema.In},
			},
		},

		// Switches and breakers
		{
			Type: "SPSTSwitch", LibraryPath: "ee_lib/Switches & Breakers/SPST Switch",
			Ports: []PortRole{
				{Suffix: "Signal", Direction: schema.In, Signal: true},
				{Suffix: "Positive", Direction: schema.In},
				{Suffix: "Negative", Direction: schema.In},
			},
			Defaults: map[string]schema.Value{"Threshold": schema.Num(0.5)},
		},
		{
			Type: "SPDTSwitch", LibraryPath: "ee_lib/Switches & Breakers/SPDT Switch",
			Ports: []PortRole{
				{Suffix: "Signal", Direction: schema.In, Signal: true},
				{Suffix: "Positive", Direction: schema.In},
				{Suffix: "Throw1", Direction: schema.In},
				{Suffix: "Throw2", Direction: schema.In},
			},
			Defaults: map[string]schema.Value{"Threshold": schema.Num(0.5)},
		},
		{
			Type: "SPMTSwitch", LibraryPath: "ee_lib/Switches & Breakers/SPMT Switch",
			Ports: []PortRole{
				{Suffix: "Signal", Direction: schema.In, Signal: true},
				{Suffix: "Positive", Direction: schema.In},
				{Suffix: "Throw1", Direction: schema.In},
				{Suffix: "Throw2", Direction: schema.In},
				{Suffix: "Throw3", Direction: schema.In},
			},
			Defaults: map[string]schema.Value{"Threshold": schema.Num(0.5)},
		},
		{
			Type: "CircuitBreaker", LibraryPath: "ee_lib/Switches & Breakers/Circuit Breaker",
			Ports: []PortRole{
				{Suffix: "Signal", Direction: schema.In, Signal: true},
				{Suffix: "Positive", Direction: schema.In},
				{Suffix: "Negative", Direction: schema.In},
			},
			Defaults: map[string]schema.Value{"Threshold": schema.Num(0.5)},
		},

		// Sensors
		{
			Type: "VoltageSensor", LibraryPath: "ee_lib/Sensors & Transducers/Voltage Sensor",
			Ports: []PortRole{
				{Suffix: "Signal", Direction: schema.Out, Signal: true},
				{Suffix: "Positive", Direction: schema.In},
				{Suffix: "Negative", Direction: schema.In},
			},
		},
		{
			Type: "CurrentSensor", LibraryPath: "ee_lib/Sensors & Transducers/Current Sensor",
			Ports: []PortRole{
				{Suffix: "Signal", Direction: schema.Out, Signal: true},
				{Suffix: "Positive", Direction: schema.In},
				{Suffix: "Negative", Direction: schema.In},
			},
		},

		// Mission loads
		{
			Type: "Lamp", LibraryPath: "ee_lib/Passive Devices/Incandescent Lamp",
			Ports: terminals,
			Defaults: map[string]schema.Value{
				"RatedVoltage": schema.Num(12),
				"RatedPower":   schema.Num(60),
			},
		},
		{
			Type: "Motor", LibraryPath: "ee_lib/Electromechanical/Brushed Motor/Universal Motor",
			Ports: terminals,
			Defaults: map[string]schema.Value{
				"RatedVoltage": schema.Num(12),
				"RatedSpeed":   schema.Num(3000),
			},
		},

		// Utility
		{
			Type: "ElectricalReference", LibraryPath: "ee_lib/Connectors & References/Electrical Reference",
			Ports:     []PortRole{{Suffix: "Terminal", Direction: schema.In}},
			Reference: true,
		},
		{
			Type: "SolverConfig", LibraryPath: "nesl_utility/Solver Configuration",
			Ports: []PortRole{{Suffix: "Terminal", Direction: schema.In}},
		},
		{
			Type: "Scope", LibraryPath: "simulink/Commonly Used Blocks/Scope",
			Ports: []PortRole{{Suffix: "Signal", Direction: schema.In, Signal: true}},
		},
		{
			Type: "Mux", LibraryPath: "simulink/Signal Routing/Mux",
			Ports: []PortRole{
				{Suffix: "In1", Direction: schema.In, Signal: true},
				{Suffix: "In2", Direction: schema.In, Signal: true},
				{Suffix: "Out", Direction: schema.Out, Signal: true},
			},
		},
		{
			Type: "FromWorkspace", LibraryPath: "simulink/Sources/From Workspace",
			Ports: []PortRole{{Suffix: "Signal", Direction: schema.Out, Signal: true}},
			Defaults: map[string]schema.Value{
				"VariableName": schema.Str("simin"),
				"SampleTime":   schema.Num(0),
			},
		},
		{
			Type: "ToWorkspace", LibraryPath: "simulink/Sinks/To Workspace",
			Ports: []PortRole{{Suffix: "Signal", Direction: schema.In, Signal: true}},
			Defaults: map[string]schema.Value{
				"VariableName": schema.Str("simout"),
				"SampleTime":   schema.Num(-1),
				"SaveFormat":   schema.Str("Structure with Time"),
			},
		},
		{
			Type: "PSConverter", LibraryPath: "nesl_utility/PS-Simulink Converter",
			Ports: []PortRole{
				{Suffix: "In", Direction: schema.In, Signal: true},
				{Suffix: "Out", Direction: schema.Out, Signal: true},
			},
		},
		{
			Type: "SPConverter", LibraryPath: "nesl_utility/Simulink-PS Converter",
			Ports: []PortRole{
				{Suffix: "In", Direction: schema.In, Signal: true},
				{Suffix: "Out", Direction: schema.Out, Signal: true},
			},
		},
	})
}
