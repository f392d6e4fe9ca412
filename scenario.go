package astro

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative body-tree definition, loaded from YAML. One body
// is the object of reference (no primary); every other body carries orbital
// elements relative to its primary.
type Scenario struct {
	// Epoch is the simulation time all initial states are stamped with.
	Epoch  float64        `yaml:"epoch"`
	Bodies []ScenarioBody `yaml:"bodies"`
}

// ScenarioBody is one body definition. Either GM or Mass must be set; GM
// wins when both are present.
type ScenarioBody struct {
	Name           string         `yaml:"name"`
	GM             float64        `yaml:"gm"`
	Mass           float64        `yaml:"mass"`
	Radius         float64        `yaml:"radius"`
	RotationPeriod float64        `yaml:"rotation_period"`
	Primary        string         `yaml:"primary"`
	Orbit          *ScenarioOrbit `yaml:"orbit"`
}

// ScenarioOrbit holds classical elements, angles in degrees, distances in
// meters. For a parabolic orbit A is read as the periapsis radius.
type ScenarioOrbit struct {
	A            float64 `yaml:"a"`
	E            float64 `yaml:"e"`
	I            float64 `yaml:"i"`
	RAAN         float64 `yaml:"raan"`
	ArgPeriapsis float64 `yaml:"argp"`
	TrueAnomaly  float64 `yaml:"nu"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if len(s.Bodies) == 0 {
		return fmt.Errorf("scenario defines no bodies")
	}
	seen := make(map[string]bool, len(s.Bodies))
	roots := 0
	for _, b := range s.Bodies {
		if b.Name == "" {
			return fmt.Errorf("scenario body without a name")
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate body %q", b.Name)
		}
		seen[b.Name] = true
		if b.GM == 0 && b.Mass == 0 {
			return fmt.Errorf("body %q needs gm or mass", b.Name)
		}
		if b.Primary == "" {
			roots++
			continue
		}
		if b.Orbit == nil {
			return fmt.Errorf("body %q orbits %q but has no orbit", b.Name, b.Primary)
		}
	}
	if roots != 1 {
		return fmt.Errorf("scenario needs exactly one object of reference, found %d", roots)
	}
	for _, b := range s.Bodies {
		if b.Primary != "" && !seen[b.Primary] {
			return fmt.Errorf("body %q orbits undefined body %q", b.Name, b.Primary)
		}
	}
	return nil
}

// BuildBodies instantiates the body tree with all states set at the
// scenario epoch. Bodies are placed primaries-first so a child's absolute
// state is always anchored to a finished primary state; a cycle in the
// primary references is reported rather than looped on.
func (s *Scenario) BuildBodies() (map[string]*Body, error) {
	bodies := make(map[string]*Body, len(s.Bodies))
	for _, def := range s.Bodies {
		var b *Body
		if def.GM != 0 {
			b = NewBodyGM(def.Name, def.GM, def.Radius, def.RotationPeriod)
		} else {
			b = NewBody(def.Name, def.Mass, def.Radius, def.RotationPeriod)
		}
		bodies[def.Name] = b
	}

	placed := make(map[string]bool, len(s.Bodies))
	pending := make([]ScenarioBody, 0, len(s.Bodies))
	for _, def := range s.Bodies {
		if def.Primary == "" {
			root := bodies[def.Name]
			root.State = NewObjectState(s.Epoch, []float64{0, 0, 0}, []float64{0, 0, 0})
			placed[def.Name] = true
			continue
		}
		pending = append(pending, def)
	}

	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, def := range pending {
			if !placed[def.Primary] {
				rest = append(rest, def)
				continue
			}
			primary := bodies[def.Primary]
			b := bodies[def.Name]
			o := def.Orbit
			op := NewOrbitFromOE(o.A, o.E, o.I, o.RAAN, o.ArgPeriapsis, o.TrueAnomaly, primary)
			R, V := op.RV()
			b.Primary = primary
			b.State = NewObjectState(s.Epoch, R, V).InFrameOf(primary.State)
			placed[def.Name] = true
			progressed = true
		}
		pending = rest
		if !progressed {
			return nil, fmt.Errorf("cyclic primary references involving %q", pending[0].Name)
		}
	}
	return bodies, nil
}
