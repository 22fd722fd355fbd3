package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/voltforge/voltforge/engine/catalog"
	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/resolve"
	"github.com/voltforge/voltforge/engine/schema"
	"github.com/voltforge/voltforge/engine/topology"
)

func checkDoc(t *testing.T, doc schema.Document) diag.List {
	t.Helper()
	cat := catalog.Default()
	root, reg, diags := topology.Build(doc, cat)
	if diags.HasErrors() {
		t.Fatalf("build: %+v", diags)
	}
	g, fdiags := resolve.Flatten(root, reg)
	out := Check(g, cat)
	out.Append(fdiags)
	return out
}

func batteryLamp(connections ...schema.Connection) schema.Document {
	return schema.Document{
		Name: "BatteryLamp",
		Components: []schema.Component{
			{ID: "Battery_1", Type: "Battery"},
			{ID: "Lamp_1", Type: "Lamp"},
		},
		Connections: connections,
	}
}

func TestValidClosedLoop(t *testing.T) {
	doc := batteryLamp(
		schema.Connection{From: "Battery_1#Positive", To: "Lamp_1#Positive"},
		schema.Connection{From: "Lamp_1#Negative", To: "Battery_1#Negative"},
	)

	diags := checkDoc(t, doc)
	if len(diags) != 0 {
		t.Fatalf("expected clean model, got %+v", diags)
	}
}

func TestMissingReturnPathFlagsLoad(t *testing.T) {
	doc := batteryLamp(
		schema.Connection{From: "Battery_1#Positive", To: "Lamp_1#Positive"},
	)

	diags := checkDoc(t, doc)
	disc := diags.ByKind(diag.DisconnectedSubgraph)
	if len(disc) != 1 {
		t.Fatalf("expected 1 disconnected subgraph, got %+v", diags)
	}
	if disc[0].Subjects[0] != "Lamp_1" {
		t.Fatalf("expected Lamp_1 named, got %+v", disc[0].Subjects)
	}
	if !errors.Is(disc[0], diag.ErrDisconnectedSubgraph) {
		t.Fatal("diagnostic must unwrap to its sentinel")
	}
}

func TestUnknownPortEndpoint(t *testing.T) {
	doc := batteryLamp(
		schema.Connection{From: "Battery_1#Positive", To: "Lamp_1#Positive"},
		schema.Connection{From: "Lamp_1#Negative", To: "Battery_1#Negative"},
		schema.Connection{From: "Battery_1#Positive", To: "Lamp_1#Anode"},
	)

	diags := checkDoc(t, doc)
	unknown := diags.ByKind(diag.UnknownPort)
	if len(unknown) != 1 {
		t.Fatalf("expected 1 unknown port, got %+v", diags)
	}
	if !strings.Contains(unknown[0].Message, "Lamp_1#Anode") {
		t.Fatalf("message must carry the raw spelling: %q", unknown[0].Message)
	}
}

func TestNoEnergySourceIsland(t *testing.T) {
	doc := schema.Document{
		Name: "Loads",
		Components: []schema.Component{
			{ID: "Lamp_1", Type: "Lamp"},
			{ID: "Lamp_2", Type: "Lamp"},
		},
		Connections: []schema.Connection{
			{From: "Lamp_1#Positive", To: "Lamp_2#Positive"},
			{From: "Lamp_2#Negative", To: "Lamp_1#Negative"},
		},
	}

	diags := checkDoc(t, doc)
	ns := diags.ByKind(diag.NoEnergySource)
	if len(ns) != 1 {
		t.Fatalf("expected 1 no-energy-source, got %+v", diags)
	}
	subjects := strings.Join(ns[0].Subjects, ",")
	if !strings.Contains(subjects, "Lamp_1") || !strings.Contains(subjects, "Lamp_2") {
		t.Fatalf("island members missing: %+v", ns[0].Subjects)
	}
}

func TestIsolatedComponentIsWarningOnly(t *testing.T) {
	doc := schema.Document{
		Name: "Spare",
		Components: []schema.Component{
			{ID: "Battery_1", Type: "Battery"},
			{ID: "Lamp_1", Type: "Lamp"},
			{ID: "Resistor_1", Type: "Resistor"},
		},
		Connections: []schema.Connection{
			{From: "Battery_1#Positive", To: "Lamp_1#Positive"},
			{From: "Lamp_1#Negative", To: "Battery_1#Negative"},
		},
	}

	diags := checkDoc(t, doc)
	if diags.HasErrors() {
		t.Fatalf("isolated parts must not be errors: %+v", diags)
	}
	iso := diags.ByKind(diag.IsolatedComponent)
	if len(iso) != 1 || iso[0].Subjects[0] != "Resistor_1" {
		t.Fatalf("expected Resistor_1 warned, got %+v", diags)
	}
	if iso[0].Severity != diag.Warning {
		t.Fatalf("expected warning severity, got %+v", iso[0])
	}
}

func TestReferenceNodeAnchorsConnectivity(t *testing.T) {
	doc := schema.Document{
		Name: "Grounded",
		Components: []schema.Component{
			{ID: "Battery_1", Type: "Battery"},
			{ID: "Lamp_1", Type: "Lamp"},
			{ID: "Ground_1", Type: "ElectricalReference"},
		},
		Connections: []schema.Connection{
			{From: "Battery_1#Positive", To: "Lamp_1#Positive"},
			{From: "Lamp_1#Negative", To: "Battery_1#Negative"},
			{From: "Battery_1#Negative", To: "Ground_1#Terminal"},
		},
	}

	diags := checkDoc(t, doc)
	if len(diags) != 0 {
		t.Fatalf("expected clean model, got %+v", diags)
	}
}

func TestSubgraphUnreachableFromReference(t *testing.T) {
	doc := schema.Document{
		Name: "TwoIslands",
		Components: []schema.Component{
			{ID: "Battery_1", Type: "Battery"},
			{ID: "Lamp_1", Type: "Lamp"},
			{ID: "Ground_1", Type: "ElectricalReference"},
			{ID: "Battery_2", Type: "Battery"},
			{ID: "Motor_1", Type: "Motor"},
		},
		Connections: []schema.Connection{
			{From: "Battery_1#Positive", To: "Lamp_1#Positive"},
			{From: "Lamp_1#Negative", To: "Battery_1#Negative"},
			{From: "Battery_1#Negative", To: "Ground_1#Terminal"},
			// Second loop never touches the reference.
			{From: "Battery_2#Positive", To: "Motor_1#Positive"},
			{From: "Motor_1#Negative", To: "Battery_2#Negative"},
		},
	}

	diags := checkDoc(t, doc)
	disc := diags.ByKind(diag.DisconnectedSubgraph)
	if len(disc) == 0 {
		t.Fatalf("expected disconnected subgraph, got %+v", diags)
	}
	var subjects []string
	for _, d := range disc {
		subjects = append(subjects, d.Subjects...)
	}
	joined := strings.Join(subjects, ",")
	if !strings.Contains(joined, "Motor_1") {
		t.Fatalf("expected Motor_1 flagged, got %+v", subjects)
	}
	if strings.Contains(joined, "Lamp_1") {
		t.Fatalf("grounded loop must not be flagged: %+v", subjects)
	}
}

func TestSuppressedBoundaryNotDoubleReported(t *testing.T) {
	doc := schema.Document{
		Name: "Dangling",
		Components: []schema.Component{
			{ID: "Battery_1", Type: "Battery"},
		},
		Subsystems: []schema.Subsystem{{
			ID:         "Sub_1",
			Components: []schema.Component{{ID: "Lamp_1", Type: "Lamp"}},
			Boundary:   []schema.BoundaryPort{{ID: "Vin", Direction: schema.In}},
		}},
		Connections: []schema.Connection{
			{From: "Battery_1#Positive", To: "Sub_1#Vin"},
		},
	}

	diags := checkDoc(t, doc)
	if len(diags.ByKind(diag.DanglingBoundary)) != 1 {
		t.Fatalf("expected dangling boundary, got %+v", diags)
	}
	if len(diags.ByKind(diag.UnknownPort)) != 0 {
		t.Fatalf("suppressed key must not double-report: %+v", diags)
	}
}

func TestSensorSignalPortDoesNotPowerIsland(t *testing.T) {
	// A lamp measured by a voltage sensor but with no source anywhere: the
	// sensor's signal output must not satisfy the energy check.
	doc := schema.Document{
		Name: "SensedButDead",
		Components: []schema.Component{
			{ID: "Lamp_1", Type: "Lamp"},
			{ID: "Sensor_1", Type: "VoltageSensor"},
		},
		Connections: []schema.Connection{
			{From: "Lamp_1#Positive", To: "Sensor_1#Positive"},
			{From: "Sensor_1#Negative", To: "Lamp_1#Negative"},
		},
	}

	diags := checkDoc(t, doc)
	if len(diags.ByKind(diag.NoEnergySource)) != 1 {
		t.Fatalf("expected no-energy-source, got %+v", diags)
	}
}

func TestUnwiredSignalPortIsNotOpenTerminal(t *testing.T) {
	// Sensor wired into a powered grounded loop, its signal pin left
	// unconnected. Signal pins carry no current and must not be treated as
	// open terminals.
	doc := schema.Document{
		Name: "SensedLoop",
		Components: []schema.Component{
			{ID: "Battery_1", Type: "Battery"},
			{ID: "Sensor_1", Type: "CurrentSensor"},
			{ID: "Lamp_1", Type: "Lamp"},
			{ID: "Ref_1", Type: "ElectricalReference"},
		},
		Connections: []schema.Connection{
			{From: "Battery_1#Positive", To: "Sensor_1#Positive"},
			{From: "Sensor_1#Negative", To: "Lamp_1#Positive"},
			{From: "Lamp_1#Negative", To: "Battery_1#Negative"},
			{From: "Battery_1#Negative", To: "Ref_1#Terminal"},
		},
	}

	diags := checkDoc(t, doc)
	if len(diags) != 0 {
		t.Fatalf("expected clean model, got %+v", diags)
	}
}
