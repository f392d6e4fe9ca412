package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian date of the J2000.0 reference epoch.
const J2000 = 2451545.0

// Ephemeris holds mean Keplerian elements of a planet at J2000.0, used to
// seed scenario body states at a calendar date. Angles are radians, the
// semi-major axis is in meters. The elements are mean values; they place
// bodies to within a fraction of a degree over a few decades around J2000,
// which is what the planners need for phase angles.
type Ephemeris struct {
	A  float64 // semi-major axis
	E  float64
	I  float64 // inclination
	Ω  float64 // longitude of the ascending node
	ϖ  float64 // longitude of perihelion
	L0 float64 // mean longitude at J2000.0
}

// SeedElements returns the J2000.0 mean elements for the planets in the
// built-in catalog.
func SeedElements() map[string]Ephemeris {
	deg := Deg2rad
	return map[string]Ephemeris{
		"Venus": {
			A: 0.72333566 * AU, E: 0.00677672,
			I: deg(3.39467605), Ω: deg(76.67984255), ϖ: deg(131.60246718), L0: deg(181.97909950),
		},
		"Earth": {
			A: 1.00000261 * AU, E: 0.01671123,
			I: 0, Ω: 0, ϖ: deg(102.93768193), L0: deg(100.46457166),
		},
		"Mars": {
			A: 1.52371034 * AU, E: 0.09339410,
			I: deg(1.84969142), Ω: deg(49.55953891), ϖ: deg(-23.94362959), L0: deg(-4.55343205),
		},
		"Jupiter": {
			A: 5.20288700 * AU, E: 0.04838624,
			I: deg(1.30439695), Ω: deg(100.47390909), ϖ: deg(14.72847983), L0: deg(34.39644051),
		},
	}
}

// OrbitPositionAt returns the heliocentric orbit position at the given
// Julian date, advancing the mean anomaly from J2000.0 and converting it to
// the true anomaly through the eccentric anomaly.
func (e Ephemeris) OrbitPositionAt(jd float64, sun *Body) (OrbitPosition, error) {
	n := math.Sqrt(sun.GM / (e.A * e.A * e.A)) // rad/s
	ω := e.ϖ - e.Ω
	M0 := e.L0 - e.ϖ
	M := math.Mod(M0+n*(jd-J2000)*86400, 2*math.Pi)
	if M < 0 {
		M += 2 * math.Pi
	}
	E, err := EccentricFromMean(M, e.E)
	if err != nil {
		return OrbitPosition{}, err
	}
	ν := TrueFromEccentric(E, e.E)
	return OrbitPosition{NewOrbit(e.A*(1-e.E*e.E), e.E, e.I, e.Ω, ω, sun), ν}, nil
}

// JulianDate converts a UTC time to a Julian date.
func JulianDate(t time.Time) float64 {
	u := t.UTC()
	day := float64(u.Day()) + (float64(u.Hour())+float64(u.Minute())/60+float64(u.Second())/3600)/24
	return julian.CalendarGregorianToJD(u.Year(), int(u.Month()), day)
}

// PlaceAtDate overwrites the states of all catalog bodies that have seed
// elements with their positions at the given date, keeping the scenario
// epoch simTime. Bodies without seed elements keep their states.
func PlaceAtDate(bodies map[string]*Body, at time.Time, simTime float64) error {
	sun, err := BodyFromMap(bodies, "Sun")
	if err != nil {
		return err
	}
	jd := JulianDate(at)
	for name, eph := range SeedElements() {
		b, ok := bodies[name]
		if !ok {
			continue
		}
		op, err := eph.OrbitPositionAt(jd, sun)
		if err != nil {
			return err
		}
		R, V := op.RV()
		b.State = NewObjectState(simTime, R, V).InFrameOf(sun.State)
	}
	if moon, ok := bodies["Moon"]; ok && moon.Primary != nil {
		// No seed elements for the Moon; re-anchor it to the moved Earth.
		moon.CircularAbout(moon.Primary, 3.844e8, 0, simTime)
	}
	return nil
}
