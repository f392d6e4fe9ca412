package astro

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"testing"
)

func TestPorkchopExporter(t *testing.T) {
	var buf bytes.Buffer
	exp, err := NewPorkchopExporter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	exp.Observe(InterceptPoint{Launch: 0, Duration: 3600, DeltaV: 123.456, ShortWay: true})
	exp.Observe(InterceptPoint{Launch: 600, Duration: 7200, DeltaV: 99.9, ShortWay: false})
	if err := exp.Close(); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("%d rows, want header plus 2", len(rows))
	}
	if rows[0][2] != "dv_ms" {
		t.Fatalf("header %v", rows[0])
	}
	if dv, _ := strconv.ParseFloat(rows[1][2], 64); dv != 123.456 {
		t.Fatalf("Δv column %s", rows[1][2])
	}
	if rows[2][3] != "false" {
		t.Fatalf("short way column %s", rows[2][3])
	}
}

func TestPorkchopExporterFromSearch(t *testing.T) {
	earth := testEarth()
	ks := NewUniversalKeplerSolver()
	gs := NewUniversalGaussSolver()
	var buf bytes.Buffer
	exp, err := NewPorkchopExporter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	req := InterceptRequest{
		Body:         earth,
		PrimaryState: earth.State,
		From:         circularState(earth, 7000e3, 0, 0),
		To:           circularState(earth, 42164e3, 2.0, 0),
		LaunchStart:  0,
		LaunchEnd:    3600,
		LaunchStep:   900,
		DurationMin:  3600,
		DurationMax:  4 * 3600,
		DurationStep: 900,
		Observer:     exp.Observe,
	}
	if _, _, err := PlanIntercept(context.Background(), ks, gs, req); err != nil {
		t.Fatal(err)
	}
	if err := exp.Close(); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) < 2 {
		t.Fatal("the search produced no pork-chop rows")
	}
}
