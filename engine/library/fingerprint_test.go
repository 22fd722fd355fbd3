package library

import (
	"math"
	"testing"

	"github.com/voltforge/voltforge/engine/catalog"
	"github.com/voltforge/voltforge/engine/normalize"
	"github.com/voltforge/voltforge/engine/resolve"
	"github.com/voltforge/voltforge/engine/schema"
	"github.com/voltforge/voltforge/engine/topology"
)

func model(t *testing.T, doc schema.Document) *normalize.Model {
	t.Helper()
	root, reg, diags := topology.Build(doc, catalog.Default())
	if diags.HasErrors() {
		t.Fatalf("build: %+v", diags)
	}
	g, _ := resolve.Flatten(root, reg)
	return normalize.Canonical(doc.Name, g, doc.Parameters)
}

func loop(name, loadID, loadType string) schema.Document {
	return schema.Document{
		Name: name,
		Components: []schema.Component{
			{ID: "Battery_1", Type: "Battery"},
			{ID: loadID, Type: loadType},
		},
		Connections: []schema.Connection{
			{From: "Battery_1#Positive", To: loadID + "#Positive"},
			{From: loadID + "#Negative", To: "Battery_1#Negative"},
		},
	}
}

func TestFingerprintIgnoresNaming(t *testing.T) {
	a := Fingerprint(model(t, loop("A", "Lamp_1", "Lamp")))
	b := Fingerprint(model(t, loop("B", "HeadLight", "Lamp")))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("renamed load changed fingerprint at bucket %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFingerprintSeparatesTopologies(t *testing.T) {
	a := Fingerprint(model(t, loop("A", "Lamp_1", "Lamp")))
	b := Fingerprint(model(t, loop("B", "Motor_1", "Motor")))

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different block types must produce different fingerprints")
	}
}

func TestFingerprintIsUnitLength(t *testing.T) {
	vec := Fingerprint(model(t, loop("A", "Lamp_1", "Lamp")))
	if len(vec) != Dims {
		t.Fatalf("expected %d dims, got %d", Dims, len(vec))
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("expected unit vector, got norm %f", norm)
	}
}

func TestFingerprintEmptyModel(t *testing.T) {
	vec := Fingerprint(&normalize.Model{Name: "Empty"})
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("empty model must map to the zero vector, bucket %d = %v", i, v)
		}
	}
}
